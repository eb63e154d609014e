package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shanehull/oslonotify/internal/config"
	"github.com/shanehull/oslonotify/internal/history"
	"github.com/shanehull/oslonotify/internal/newsweb"
	"github.com/shanehull/oslonotify/internal/pipeline"
	"github.com/shanehull/oslonotify/internal/subscribers"
)

func openStore(ctx context.Context, cfg *config.Config, day string) (pipeline.Store, string, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		client := history.NewRedisClient(cfg.Store.RedisURL)
		store, err := history.OpenRedis(ctx, client, cfg.Store.RedisPrefix, day)
		if err != nil {
			client.Close()
			return nil, "", nil, err
		}
		return store, store.Path(), func() { client.Close() }, nil
	default:
		store, err := history.Open(cfg.Store.Dir, day)
		if err != nil {
			return nil, "", nil, err
		}
		return store, store.Path(), func() {}, nil
	}
}

func openDirectory(ctx context.Context, cfg *config.Config) (pipeline.Directory, func(), error) {
	switch cfg.Directory.Kind {
	case config.DirectoryPostgres:
		pg, err := subscribers.NewPostgres(ctx, cfg.Directory.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("subscriber database: %w", err)
		}
		return pg, pg.Close, nil
	default:
		dir, err := subscribers.LoadFile(cfg.Directory.File)
		if err != nil {
			return nil, nil, err
		}
		return dir, func() {}, nil
	}
}

func sourceBaseURL(cfg *config.Config) string {
	if cfg.Source.BaseURL != "" {
		return cfg.Source.BaseURL
	}
	return newsweb.DefaultBaseURL
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Source.Timeout}
}
