package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reaper is the slice of the ranking use case the sweeper drives.
type Reaper interface {
	ReapStale(ctx context.Context) (int, error)
}

// StaleReaper periodically fails ranking runs whose instance died mid-run.
type StaleReaper struct {
	interval time.Duration
	timeout  time.Duration
	uc       Reaper
	log      *zerolog.Logger
}

func NewStaleReaper(interval time.Duration, uc Reaper, logger *zerolog.Logger) *StaleReaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	l := logger.With().Str("component", "StaleReaper").Logger()
	return &StaleReaper{interval: interval, timeout: 30 * time.Second, uc: uc, log: &l}
}

// Run sweeps once immediately, then every interval until ctx is done.
func (w *StaleReaper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stale run reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stale run reaper")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *StaleReaper) tick(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	n, err := w.uc.ReapStale(runCtx)
	if err != nil && ctx.Err() == nil {
		w.log.Error().Err(err).Msg("stale run sweep failed")
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("abandoned ranking runs failed")
	}
}
