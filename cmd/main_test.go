package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"polyp-dashboard/config"
	"polyp-dashboard/internal/logger"
)

// syncBuffer буфер для логов, которые пишут несколько горутин
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		HTTPAddr:        "127.0.0.1:0",
		DataDir:         dir,
		UploadDir:       dir + "/uploads",
		Threshold:       127,
		PageSize:        9,
		LogLevel:        "info",
		RescanSchedule:  "@every 1h",
		RescanTimeout:   time.Second,
		MaxUploadBytes:  1 << 20,
		ShutdownTimeout: time.Second,
	}
}

func TestRun_ListenErrorStopsRescanner(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = "127.0.0.1:-1"

	var buf syncBuffer
	err := run(context.Background(), cfg, logger.New(cfg.LogLevel, &buf))
	require.Error(t, err)
	require.Contains(t, err.Error(), "listen")

	out := buf.String()
	require.Contains(t, out, "dataset rescan scheduled")
	require.Contains(t, out, "dataset rescan stopped")
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)

	var buf syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, logger.New(cfg.LogLevel, &buf)) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	require.Contains(t, buf.String(), "dataset rescan stopped")
}

func TestRun_BadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.RescanSchedule = "not a schedule"

	err := run(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "create rescanner")
}
