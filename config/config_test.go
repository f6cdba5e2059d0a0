package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"FITTRACK_MONITORING_OFFSET", "FITTRACK_GAP_THRESHOLD", "FITTRACK_DISPLAY_OFFSET",
		"FITTRACK_DB_PATH", "FITTRACK_DEVICE", "FITTRACK_LOG_LEVEL", "FITTRACK_LOG_FORMAT",
		"FITTRACK_RESCAN", "FITTRACK_LINE_TAGS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, 5*time.Hour+30*time.Minute, cfg.Calibration.MonitoringOffset)
	assert.Equal(t, time.Minute, cfg.Calibration.GapThreshold)
	assert.Equal(t, -9*time.Hour, cfg.Calibration.DisplayOffset)
	assert.Equal(t, "fittrack.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "@hourly", cfg.Rescan)
	assert.Empty(t, cfg.LineTags)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FITTRACK_MONITORING_OFFSET", "0s")
	t.Setenv("FITTRACK_GAP_THRESHOLD", "2m")
	t.Setenv("FITTRACK_DISPLAY_OFFSET", "not-a-duration")
	t.Setenv("FITTRACK_DB_PATH", "/tmp/hr.db")
	t.Setenv("FITTRACK_LINE_TAGS", "site=home, athlete = me ,broken,=x")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Zero(t, cfg.Calibration.MonitoringOffset)
	assert.Equal(t, 2*time.Minute, cfg.Calibration.GapThreshold)
	assert.Equal(t, -9*time.Hour, cfg.Calibration.DisplayOffset, "invalid durations fall back")
	assert.Equal(t, "/tmp/hr.db", cfg.DBPath)
	assert.Equal(t, map[string]string{"site": "home", "athlete": "me"}, cfg.LineTags)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FITTRACK_DEVICE=forerunner\nFITTRACK_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("FITTRACK_LOG_LEVEL", "warn")
	t.Setenv("FITTRACK_DEVICE", "")
	os.Unsetenv("FITTRACK_DEVICE")

	cfg := Load(path)
	assert.Equal(t, "forerunner", cfg.Device)
	assert.Equal(t, "warn", cfg.LogLevel)
}
