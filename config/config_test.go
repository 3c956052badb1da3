package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATA_DIR", "UPLOAD_DIR", "MASK_THRESHOLD", "PAGE_SIZE", "TELEGRAM_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "public", cfg.DataDir)
	require.Equal(t, "public/uploads", cfg.UploadDir)
	require.Equal(t, 127, cfg.Threshold)
	require.Equal(t, 9, cfg.PageSize)
	require.Empty(t, cfg.TelegramToken)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("DATA_DIR", "/srv/kvasir")
	t.Setenv("MASK_THRESHOLD", "100")
	t.Setenv("RESCAN_SCHEDULE", "@every 5m")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	require.Equal(t, "/srv/kvasir/uploads", cfg.UploadDir)
	require.Equal(t, 100, cfg.Threshold)
	require.Equal(t, "@every 5m", cfg.RescanSchedule)
	require.Zero(t, cfg.RateLimitRPS)
}

func TestLoad_Malformed(t *testing.T) {
	t.Setenv("PAGE_SIZE", "nine")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PAGE_SIZE")
	require.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	t.Setenv("MASK_THRESHOLD", "300")

	_, err := Load()
	require.Error(t, err)
}
