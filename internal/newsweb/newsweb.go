/*
Package newsweb fetches announcements from the Oslo Børs newsreader API.
*/
package newsweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shanehull/oslonotify/internal/types"
)

const (
	DefaultBaseURL   = "https://api3.oslo.oslobors.no/v1/newsreader"
	DefaultTimeout   = 60 * time.Second
	DefaultRateLimit = 5

	messageURLFormat = "https://newsweb.oslobors.no/message/%d"
)

// listQuery mirrors the newsreader UI: every filter present but empty,
// which yields all of today's announcements.
var listQuery = url.Values{
	"category":     {""},
	"issuer":       {""},
	"fromDate":     {""},
	"toDate":       {""},
	"market":       {""},
	"messageTitle": {""},
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MessageURL is the public newsweb page for a message.
func MessageURL(messageID int64) string {
	return fmt.Sprintf(messageURLFormat, messageID)
}

type listResponse struct {
	Data *struct {
		Messages []rawMessage `json:"messages"`
	} `json:"data"`
}

type messageResponse struct {
	Data *struct {
		Message *struct {
			Title *string `json:"title"`
			Body  string  `json:"body"`
		} `json:"message"`
	} `json:"data"`
}

// FetchList returns every announcement published today. Items that fail
// validation are logged and skipped.
func (c *Client) FetchList(ctx context.Context) ([]types.Announcement, error) {
	endpoint := c.baseURL + "/list?" + listQuery.Encode()

	var resp listResponse
	if err := c.do(ctx, http.MethodPost, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSource, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: response from %s has no data object", types.ErrSource, endpoint)
	}

	announcements := make([]types.Announcement, 0, len(resp.Data.Messages))
	for i, raw := range resp.Data.Messages {
		ann, err := raw.toAnnouncement()
		if err != nil {
			c.logger.Warn("skipping invalid announcement", "index", i, "error", err)
			continue
		}
		announcements = append(announcements, ann)
	}

	c.logger.Info("fetched announcement list", "total", len(resp.Data.Messages), "valid", len(announcements))
	return announcements, nil
}

// FetchContent returns the title and plain text body of an announcement.
func (c *Client) FetchContent(ctx context.Context, id int64) (*types.Content, error) {
	endpoint := fmt.Sprintf("%s/message?messageId=%d", c.baseURL, id)

	var resp messageResponse
	if err := c.do(ctx, http.MethodGet, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.Message == nil {
		return nil, fmt.Errorf("response from %s has no message object", endpoint)
	}
	msg := resp.Data.Message
	if msg.Title == nil {
		return nil, fmt.Errorf("message %d has no title", id)
	}

	return &types.Content{
		Title: strings.TrimSpace(*msg.Title),
		Body:  htmlToText(msg.Body),
	}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("newsreader request", "method", method, "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", "url", endpoint, "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("received non-OK status code %d from %s: %s", resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

type rawMessage struct {
	ID                     *int64          `json:"id"`
	MessageID              int64           `json:"messageId"`
	NewsID                 int64           `json:"newsId"`
	Title                  *string         `json:"title"`
	Category               json.RawMessage `json:"category"`
	Markets                []string        `json:"markets"`
	IssuerID               int64           `json:"issuerId"`
	PublishedTime          string          `json:"publishedTime"`
	CorrectionForMessageID *int64          `json:"correctionForMessageId"`
	IssuerSign             *string         `json:"issuerSign"`
	IssuerName             *string         `json:"issuerName"`
	InstrumentName         *string         `json:"instrumentName"`
	Test                   *bool           `json:"test"`
	NumbAttachments        *int            `json:"numbAttachments"`
}

func (m rawMessage) toAnnouncement() (types.Announcement, error) {
	if m.ID == nil {
		return types.Announcement{}, errors.New("missing id")
	}
	if m.Title == nil {
		return types.Announcement{}, fmt.Errorf("announcement %d: missing title", *m.ID)
	}

	ann := types.Announcement{
		ID:             *m.ID,
		MessageID:      m.MessageID,
		NewsID:         m.NewsID,
		Title:          strings.TrimSpace(*m.Title),
		IssuerSign:     types.NormalizeTicker(deref(m.IssuerSign)),
		IssuerName:     deref(m.IssuerName),
		InstrumentName: deref(m.InstrumentName),
		Markets:        m.Markets,
		Category:       parseCategories(m.Category),
	}
	if ann.MessageID == 0 {
		ann.MessageID = ann.ID
	}
	if m.CorrectionForMessageID != nil {
		ann.CorrectionForMessageID = *m.CorrectionForMessageID
	}
	if m.Test != nil {
		ann.Test = *m.Test
	}
	if m.NumbAttachments != nil {
		ann.Attachments = *m.NumbAttachments
	}
	if m.PublishedTime != "" {
		if t, err := time.Parse(time.RFC3339, m.PublishedTime); err == nil {
			ann.PublishedTime = t
		}
	}
	return ann, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
