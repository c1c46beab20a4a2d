// Package sweeper runs periodic checkout housekeeping.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-engine/internal/checkout"
)

const defaultBatch = 100

// Housekeeper is the part of the orchestrator the sweeper drives.
type Housekeeper interface {
	Sweep(ctx context.Context, retention time.Duration, batch int) (checkout.SweepResult, error)
}

// Sweeper expires lapsed sessions and purges old holds. Reads never depend
// on it; it keeps tables small and events timely.
type Sweeper struct {
	Target    Housekeeper
	Interval  time.Duration
	Retention time.Duration
	Batch     int
	Log       logrus.FieldLogger
}

// Run sweeps once immediately and then every Interval until ctx ends.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return fmt.Errorf("sweeper: interval must be positive, got %s", s.Interval)
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	batch := s.Batch
	if batch <= 0 {
		batch = defaultBatch
	}
	res, err := s.Target.Sweep(ctx, s.Retention, batch)
	if err != nil {
		if ctx.Err() == nil {
			s.Log.WithError(err).Warn("sweep failed")
		}
		return
	}
	if res.Expired+res.Abandoned > 0 || res.Purged > 0 {
		s.Log.WithFields(logrus.Fields{
			"expired":   res.Expired,
			"abandoned": res.Abandoned,
			"purged":    res.Purged,
		}).Info("sweep done")
	}
}
