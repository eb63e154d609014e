package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/oslonotify/internal/types"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApplyEnvAndDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{
		"SMTP_USERNAME": "bot@example.com",
		"SMTP_PASSWORD": "secret",
		"SMTP_PORT":     "2525",
	})))
	cfg.applyDefaults()

	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Server)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "bot@example.com", cfg.SMTP.From)
	assert.Equal(t, DirectoryFile, cfg.Directory.Kind)
	assert.Equal(t, "subscribers.yaml", cfg.Directory.File)
	assert.Equal(t, StoreFile, cfg.Store.Backend)
	assert.Equal(t, "tmp", cfg.Store.Dir)
	assert.Equal(t, 60*time.Second, cfg.Source.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := &Config{}
	err := cfg.applyEnv(envMap(map[string]string{"SMTP_PORT": "abc"}))
	assert.ErrorIs(t, err, types.ErrConfig)
}

func TestDatabaseURLSelectsPostgres(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{"DATABASE_URL": "postgres://u:p@localhost/db"})))
	cfg.applyDefaults()
	assert.Equal(t, DirectoryPostgres, cfg.Directory.Kind)
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfig)
	assert.Contains(t, err.Error(), "SMTP_USERNAME")
}

func TestValidateBackends(t *testing.T) {
	base := func() *Config {
		c := &Config{SMTP: SMTPConfig{Username: "u", Password: "p"}}
		c.applyDefaults()
		return c
	}

	c := base()
	c.Store.Backend = StoreRedis
	assert.ErrorContains(t, c.Validate(), "REDIS_URL")

	c = base()
	c.Directory.Kind = DirectoryPostgres
	assert.ErrorContains(t, c.Validate(), "DATABASE_URL")

	c = base()
	c.Store.Backend = "s3"
	assert.ErrorContains(t, c.Validate(), "unknown store backend")

	c = base()
	c.Timezone = "Mars/Olympus"
	assert.ErrorIs(t, c.Validate(), types.ErrConfig)

	c = base()
	c.Timezone = "Europe/Oslo"
	assert.NoError(t, c.Validate())
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SMTP_PASS", "from-env")
	t.Setenv("SMTP_USERNAME", "")
	t.Setenv("SMTP_PASSWORD", "")

	path := filepath.Join(t.TempDir(), "oslonotify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
smtp:
  username: bot@example.com
  password: ${TEST_SMTP_PASS}
store:
  backend: file
  dir: /var/lib/oslonotify
directory:
  file: /etc/oslonotify/subscribers.yaml
timezone: Europe/Oslo
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SMTP.Password)
	assert.Equal(t, "/var/lib/oslonotify", cfg.Store.Dir)
	assert.Equal(t, "/etc/oslonotify/subscribers.yaml", cfg.Directory.File)
	assert.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Oslo", loc.String())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, types.ErrConfig)
}
