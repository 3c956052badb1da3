package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reloader перечитывает датасет
type Reloader interface {
	Reload(ctx context.Context) (int, error)
}

// Rescanner по расписанию cron перечитывает датасет с диска.
type Rescanner struct {
	cron     *cron.Cron
	reloader Reloader
	timeout  time.Duration
	log      zerolog.Logger
}

// NewRescanner создаёт планировщик. Расписание в формате cron с секундами
// ("0 */10 * * * *") или дескриптор вида "@every 10m".
func NewRescanner(schedule string, reloader Reloader, timeout time.Duration, log zerolog.Logger) (*Rescanner, error) {
	r := &Rescanner{
		cron:     cron.New(cron.WithSeconds()),
		reloader: reloader,
		timeout:  timeout,
		log:      log,
	}

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("parse rescan schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start запускает планировщик в фоне
func (r *Rescanner) Start() {
	r.cron.Start()
	r.log.Info().Msg("dataset rescan scheduled")
}

// Stop останавливает планировщик и ждёт завершения текущего прогона
func (r *Rescanner) Stop(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		r.log.Info().Msg("dataset rescan stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Rescanner) run() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := r.reloader.Reload(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("scheduled rescan failed")
		return
	}
	r.log.Debug().Int("records", n).Dur("took", time.Since(start)).Msg("scheduled rescan finished")
}
