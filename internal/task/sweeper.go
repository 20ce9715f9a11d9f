package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// Sweeper periodically resumes price workflows that were interrupted and have
// sat idle past the stale threshold. Fresh checkpoints are skipped: the run
// that wrote them may still be in flight.
type Sweeper struct {
	prices     *service.PriceService
	staleAfter time.Duration
	cron       *cron.Cron
	logger     *zap.Logger
}

func NewSweeper(prices *service.PriceService, cfg config.PriceConfig, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		prices:     prices,
		staleAfter: cfg.StaleAfter,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start schedules the sweep and begins the cron loop.
func (s *Sweeper) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep resumes every stale interrupted workflow once. Failures are logged
// and left for the next sweep; resuming is idempotent from any checkpoint.
func (s *Sweeper) Sweep(ctx context.Context) {
	workflows, err := s.prices.ListInterrupted(ctx)
	if err != nil {
		s.logger.Error("Failed to list interrupted price workflows", zap.Error(err))
		return
	}

	cutoff := time.Now().Add(-s.staleAfter)
	for _, wf := range workflows {
		if wf.UpdatedAt.After(cutoff) {
			continue
		}
		s.logger.Info("Resuming stale price workflow",
			zap.String("workflowId", wf.ID),
			zap.String("state", string(wf.State)),
			zap.Time("updatedAt", wf.UpdatedAt),
		)
		if _, err := s.prices.Resume(ctx, wf.ID); err != nil {
			s.logger.Error("Failed to resume price workflow",
				zap.String("workflowId", wf.ID),
				zap.Error(err),
			)
		}
	}
}
