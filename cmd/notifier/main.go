package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/shanehull/oslonotify/internal/ai"
	"github.com/shanehull/oslonotify/internal/config"
	"github.com/shanehull/oslonotify/internal/history"
	"github.com/shanehull/oslonotify/internal/newsweb"
	"github.com/shanehull/oslonotify/internal/notify"
	"github.com/shanehull/oslonotify/internal/pipeline"
	"github.com/shanehull/oslonotify/internal/types"
)

var (
	configPath  = flag.String("config", "", "(-c) Path to a YAML config file")
	subsFile    = flag.String("subscribers", "", "Subscribers YAML file (overrides config)")
	storeDir    = flag.String("store-dir", "", "Directory holding the daily notification files (default: tmp)")
	timezone    = flag.String("timezone", "", "Time zone that decides the calendar day (default: local)")
	geminiModel = flag.String("gemini-model", "", "Gemini model for announcement summaries (enabled when GEMINI_API_KEY is set)")
	verbose     = flag.Bool("verbose", false, "(-v) Enable debug logging")
	logJSON     = flag.Bool("log-json", false, "Log as JSON instead of text")
)

func init() {
	flag.StringVar(configPath, "c", "", "(-c) Path to a YAML config file (shorthand)")
	flag.BoolVar(verbose, "v", false, "(-v) Enable debug logging (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		for _, name := range []string{"config", "subscribers", "store-dir", "timezone", "gemini-model", "verbose", "log-json"} {
			if f := flag.CommandLine.Lookup(name); f != nil {
				fmt.Fprintf(os.Stderr, "  -%s\n    %s\n", f.Name, f.Usage)
			}
		}
		fmt.Fprintln(os.Stderr, "\nCredentials are read from the environment (or .env):")
		fmt.Fprintln(os.Stderr, "  SMTP_USERNAME, SMTP_PASSWORD, DATABASE_URL, REDIS_URL, GEMINI_API_KEY")
	}
}

func main() {
	flag.Parse()

	logger := newLogger()
	slog.SetDefault(logger)

	if err := run(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error %s: %v\n", describe(err), err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if *verbose {
		opts.Level = slog.LevelDebug
	}
	if *logJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// describe names the dependency behind a fatal error.
func describe(err error) string {
	switch {
	case errors.Is(err, types.ErrConfig):
		return "in configuration"
	case errors.Is(err, types.ErrStorage), errors.Is(err, types.ErrParse):
		return "with the daily notification store"
	case errors.Is(err, types.ErrSource):
		return "fetching announcements"
	case errors.Is(err, types.ErrDirectory):
		return "reading the subscriber directory"
	default:
		return "during run"
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, cliOverrides{
		subscribers: *subsFile,
		storeDir:    *storeDir,
		timezone:    *timezone,
		geminiModel: *geminiModel,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrConfig, err)
	}
	day := history.DayName(time.Now(), loc)

	runID := uuid.NewString()
	runLogger := logger.With("run_id", runID)

	store, storeLocation, cleanupStore, err := openStore(ctx, cfg, day)
	if err != nil {
		return err
	}
	defer cleanupStore()

	directory, cleanupDir, err := openDirectory(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanupDir()

	source := newsweb.NewClient(
		newsweb.WithBaseURL(sourceBaseURL(cfg)),
		newsweb.WithHTTPClient(newHTTPClient(cfg)),
		newsweb.WithRateLimit(cfg.Source.RateLimit),
		newsweb.WithLogger(runLogger),
	)

	sender := notify.NewEmailSender(notify.EmailConfig{
		SMTPServer: cfg.SMTP.Server,
		SMTPPort:   cfg.SMTP.Port,
		SMTPUser:   cfg.SMTP.Username,
		SMTPPass:   cfg.SMTP.Password,
		FromEmail:  cfg.SMTP.From,
	}, runLogger)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithRunID(runID),
		pipeline.WithDay(day),
	}
	if cfg.Gemini.APIKey != "" {
		analyzer, err := ai.NewAnalyzer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			runLogger.Warn("AI summaries disabled", "error", err)
		} else {
			opts = append(opts, pipeline.WithAnalyzer(analyzer))
		}
	}

	runLogger.Info("starting Oslo Børs notifier", "day", day, "store", storeLocation, "directory", cfg.Directory.Kind)

	driver := pipeline.New(store, source, directory, sender, notify.NewHTMLEmailRenderer(), opts...)
	summary, err := driver.Run(ctx)
	if summary != nil {
		notify.ReportRun(os.Stdout, summary, storeLocation)
	}
	return err
}

type cliOverrides struct {
	subscribers string
	storeDir    string
	timezone    string
	geminiModel string
}

func applyFlags(cfg *config.Config, o cliOverrides) {
	if o.subscribers != "" {
		cfg.Directory.Kind = config.DirectoryFile
		cfg.Directory.File = o.subscribers
	}
	if o.storeDir != "" {
		cfg.Store.Dir = o.storeDir
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}
	if o.geminiModel != "" {
		cfg.Gemini.Model = o.geminiModel
	}
}
