package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORKERS", "")
	t.Setenv("INPUT_EXTENSIONS", "")
	t.Setenv("CLASS_PREFIX", "br-")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{".csv", ".xlsx", ".html", ".htm"}, cfg.InputExtensions)
	assert.Equal(t, "br-", cfg.ClassPrefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKERS", "2")
	t.Setenv("INPUT_EXTENSIONS", "CSV, .xlsx,,")
	t.Setenv("WATCH_INTERVAL_SEC", "5")
	t.Setenv("SEARCH_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{".csv", ".xlsx"}, cfg.InputExtensions)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
	assert.Equal(t, 50, cfg.SearchLimit)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg.Workers = 1
	cfg.WatchInterval = 0
	assert.Error(t, cfg.Validate())
}
