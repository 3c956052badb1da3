package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"polyp-dashboard/internal/logger"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (c *countingReloader) Reload(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 3, c.err
}

func TestNewRescanner_BadSchedule(t *testing.T) {
	_, err := NewRescanner("not a schedule", &countingReloader{}, time.Second, logger.Nop())
	require.Error(t, err)
}

func TestRescanner_RunsOnSchedule(t *testing.T) {
	rel := &countingReloader{}
	r, err := NewRescanner("@every 1s", rel, time.Second, logger.Nop())
	require.NoError(t, err)

	r.Start()
	require.Eventually(t, func() bool { return rel.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	require.NoError(t, r.Stop(context.Background()))
}

func TestRescanner_RunSurvivesError(t *testing.T) {
	rel := &countingReloader{err: errors.New("disk gone")}
	r, err := NewRescanner("@every 1h", rel, 0, logger.Nop())
	require.NoError(t, err)

	r.run()
	r.run()
	require.Equal(t, int32(2), rel.calls.Load())
}
