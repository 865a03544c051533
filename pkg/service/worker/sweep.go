package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/argos/pkg/usecase"
	"github.com/secmon-lab/argos/pkg/utils/logging"
)

// SweepWorker manages the periodic inactivity sweep over the external guild
// registry. Guilds that have not filed a request within the threshold are
// demoted to inactive and must re-register before filing again.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type SweepWorker struct {
	registry     *usecase.RegistryUseCase
	initialDelay time.Duration
	interval     time.Duration
	threshold    time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewSweepWorker creates a new worker for sweeping inactive guild registrations
func NewSweepWorker(registry *usecase.RegistryUseCase, initialDelay, interval, threshold time.Duration) *SweepWorker {
	return &SweepWorker{
		registry:     registry,
		initialDelay: initialDelay,
		interval:     interval,
		threshold:    threshold,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background sweep loop
// - The first pass waits for the initial delay, then the sweep repeats on the interval
// - Does not block server startup
func (w *SweepWorker) Start(ctx context.Context) error {
	logging.Default().Info("guild sweep worker starting",
		"initial_delay", w.initialDelay.String(),
		"interval", w.interval.String(),
		"threshold", w.threshold.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SweepWorker) Stop() {
	logging.Default().Info("guild sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("guild sweep worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *SweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	delay := time.NewTimer(w.initialDelay)
	defer delay.Stop()

	select {
	case <-delay.C:
	case <-w.stopCh:
		logging.Default().Info("guild sweep worker received stop signal")
		return
	case <-ctx.Done():
		logging.Default().Info("guild sweep worker context cancelled")
		return
	}

	if _, err := w.registry.SweepInactive(ctx, w.threshold); err != nil {
		logging.Default().Error("initial guild sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.registry.SweepInactive(ctx, w.threshold); err != nil {
				// Log error but continue worker
				logging.Default().Error("guild sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("guild sweep worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("guild sweep worker context cancelled")
			return
		}
	}
}
