/*
Package pipeline runs one notification pass: load today's store, fetch the
announcements and subscribers, and email every new match exactly once.

The pass is strictly sequential. Two passes running at the same time against
the same day's store can both read the same snapshot and send duplicates;
nothing here coordinates them.
*/
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shanehull/oslonotify/internal/ai"
	"github.com/shanehull/oslonotify/internal/match"
	"github.com/shanehull/oslonotify/internal/newsweb"
	"github.com/shanehull/oslonotify/internal/notify"
	"github.com/shanehull/oslonotify/internal/types"
)

type Store interface {
	LoadKeys(ctx context.Context) (types.KeySet, error)
	Record(ctx context.Context, key types.Key) error
}

type Source interface {
	FetchList(ctx context.Context) ([]types.Announcement, error)
	FetchContent(ctx context.Context, id int64) (*types.Content, error)
}

type Directory interface {
	List(ctx context.Context) ([]types.Subscriber, error)
}

type Notifier interface {
	Send(ctx context.Context, to string, msg *notify.RenderedMessage) error
}

type Renderer interface {
	Render(data notify.NotificationData) (*notify.RenderedMessage, error)
}

// Analyzer is optional; a failed analysis never blocks delivery.
type Analyzer interface {
	Analyze(ctx context.Context, ann types.Announcement, content types.Content) (*ai.Analysis, error)
}

type Driver struct {
	store     Store
	source    Source
	directory Directory
	notifier  Notifier
	renderer  Renderer
	analyzer  Analyzer
	logger    *slog.Logger
	runID     string
	day       string
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func WithAnalyzer(a Analyzer) Option {
	return func(d *Driver) {
		d.analyzer = a
	}
}

func WithRunID(id string) Option {
	return func(d *Driver) {
		d.runID = id
	}
}

// WithDay labels the run summary with the store's day name.
func WithDay(day string) Option {
	return func(d *Driver) {
		d.day = day
	}
}

func New(store Store, source Source, directory Directory, notifier Notifier, renderer Renderer, opts ...Option) *Driver {
	d := &Driver{
		store:     store,
		source:    source,
		directory: directory,
		notifier:  notifier,
		renderer:  renderer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.runID == "" {
		d.runID = uuid.NewString()
	}
	d.logger = d.logger.With("run_id", d.runID)
	return d
}

// Run performs one pass over subscribers × announcements. A returned error is
// fatal for the run; per-pair failures are logged and counted in the summary.
func (d *Driver) Run(ctx context.Context) (*types.RunSummary, error) {
	summary := &types.RunSummary{RunID: d.runID, Day: d.day}

	known, err := d.store.LoadKeys(ctx)
	if err != nil {
		return summary, fmt.Errorf("load daily store: %w", err)
	}
	d.logger.Info("loaded daily store", "day", d.day, "keys", known.Len())

	announcements, err := d.source.FetchList(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch announcements: %w", err)
	}
	summary.Announcements = len(announcements)

	subscribers, err := d.directory.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("list subscribers: %w", err)
	}
	summary.Subscribers = len(subscribers)

	d.logger.Info("starting pass", "announcements", len(announcements), "subscribers", len(subscribers))

	messages := make(map[int64]*notify.RenderedMessage)

	for _, sub := range subscribers {
		for _, ann := range announcements {
			key := match.KeyFor(sub, ann)

			if !match.ShouldNotify(sub, ann, known) {
				if ann.IssuerSign != "" && sub.Watches(ann.IssuerSign) {
					summary.AlreadyNotified++
				}
				continue
			}
			summary.Matched++

			delivery := types.Delivery{Key: key, Address: sub.Address, Ticker: ann.IssuerSign}
			log := d.logger.With("subscriber", sub.ID, "message_id", ann.ID, "ticker", ann.IssuerSign)

			msg, ok := messages[ann.ID]
			if !ok {
				msg, err = d.prepare(ctx, ann)
				if err != nil {
					log.Error("failed to prepare notification", "error", err)
					delivery.Err = err
					summary.Failed++
					summary.Deliveries = append(summary.Deliveries, delivery)
					continue
				}
				messages[ann.ID] = msg
			}
			delivery.Subject = msg.Subject

			if err := d.notifier.Send(ctx, sub.Address, msg); err != nil {
				log.Error("delivery failed", "to", sub.Address, "error", err)
				delivery.Err = err
				summary.Failed++
				summary.Deliveries = append(summary.Deliveries, delivery)
				continue
			}

			if err := d.store.Record(ctx, key); err != nil {
				summary.Sent++
				summary.Deliveries = append(summary.Deliveries, delivery)
				return summary, fmt.Errorf("record %s: %w", key, err)
			}
			known.Add(key)

			summary.Sent++
			summary.Deliveries = append(summary.Deliveries, delivery)
		}
	}

	d.logger.Info("pass complete",
		"matched", summary.Matched,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"already_notified", summary.AlreadyNotified)

	return summary, nil
}

// prepare fetches, optionally analyses and renders one announcement. The
// result is identical for every subscriber, so callers cache it per run.
func (d *Driver) prepare(ctx context.Context, ann types.Announcement) (*notify.RenderedMessage, error) {
	content, err := d.source.FetchContent(ctx, ann.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}

	messageID := ann.MessageID
	if messageID == 0 {
		messageID = ann.ID
	}

	data := notify.NotificationData{
		Announcement: ann,
		Content:      *content,
		URL:          newsweb.MessageURL(messageID),
	}

	if d.analyzer != nil {
		analysis, err := d.analyzer.Analyze(ctx, ann, *content)
		if err != nil {
			d.logger.Warn("AI summary failed", "message_id", ann.ID, "error", err)
		} else {
			data.Analysis = analysis
		}
	}

	msg, err := d.renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return msg, nil
}
