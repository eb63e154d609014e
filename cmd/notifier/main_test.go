package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shanehull/oslonotify/internal/config"
	"github.com/shanehull/oslonotify/internal/types"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", fmt.Errorf("%w: SMTP_USERNAME missing", types.ErrConfig), "in configuration"},
		{"storage", fmt.Errorf("load daily store: %w", types.ErrStorage), "with the daily notification store"},
		{"unreadable store", fmt.Errorf("load daily store: %w", types.ErrParse), "with the daily notification store"},
		{"source", fmt.Errorf("fetch announcements: %w", types.ErrSource), "fetching announcements"},
		{"directory", fmt.Errorf("subscriber database: %w", fmt.Errorf("%w: ping database: connection refused", types.ErrDirectory)), "reading the subscriber directory"},
		{"unknown", errors.New("boom"), "during run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{
		Directory: config.DirectoryConfig{Kind: config.DirectoryPostgres, DatabaseURL: "postgres://db"},
		Store:     config.StoreConfig{Dir: "tmp"},
		Timezone:  "UTC",
	}

	applyFlags(cfg, cliOverrides{})
	assert.Equal(t, config.DirectoryPostgres, cfg.Directory.Kind)
	assert.Equal(t, "tmp", cfg.Store.Dir)
	assert.Equal(t, "UTC", cfg.Timezone)

	applyFlags(cfg, cliOverrides{
		subscribers: "subs.yaml",
		storeDir:    "/var/lib/oslonotify",
		timezone:    "Europe/Oslo",
		geminiModel: "gemini-2.5-pro",
	})
	assert.Equal(t, config.DirectoryFile, cfg.Directory.Kind)
	assert.Equal(t, "subs.yaml", cfg.Directory.File)
	assert.Equal(t, "/var/lib/oslonotify", cfg.Store.Dir)
	assert.Equal(t, "Europe/Oslo", cfg.Timezone)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
}
