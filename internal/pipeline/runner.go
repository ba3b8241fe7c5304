package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/ibs-source/print-consumer/internal/mqtt"
)

// Runner drives the pipeline from a delivery source with a fixed pool of
// print workers. The source blocks handing over deliveries, so the worker
// count bounds how many messages are in flight at once.
type Runner struct {
	source   mqtt.Source
	pipeline *Pipeline
	workers  int
	log      *log.Logger
}

// NewRunner creates a runner
func NewRunner(source mqtt.Source, pipeline *Pipeline, cfg *config.Config, logger *log.Logger) *Runner {
	workers := cfg.Pipeline.Prefetch
	if workers < 1 {
		workers = 1
	}

	return &Runner{
		source:   source,
		pipeline: pipeline,
		workers:  workers,
		log:      logger,
	}
}

// startLoop starts a loop goroutine and reports non-canceled errors
func (r *Runner) startLoop(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	loop func(context.Context) error,
	errCh chan<- error,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("%s loop error: %w", name, err)
		}
	}()
}

// Run subscribes to the queue and processes deliveries until the context is
// canceled or a worker fails
func (r *Runner) Run(ctx context.Context) error {
	if err := r.source.Subscribe(); err != nil {
		return fmt.Errorf("failed to subscribe to print queue: %w", err)
	}

	// Workers block on the delivery channel, which the source owns, so
	// shutdown is signaled through a derived context instead
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, r.workers)

	r.log.Info("Starting %d print workers", r.workers)
	for i := 0; i < r.workers; i++ {
		r.startLoop(loopCtx, &wg, fmt.Sprintf("print-%d", i), r.printLoop, errCh)
	}

	select {
	case <-ctx.Done():
		r.log.Info("Shutting down print workers")
		cancel()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		r.log.Error("Print worker error: %v", err)
		cancel()
		wg.Wait()
		return err
	}
}

// printLoop continuously takes deliveries from the source and settles them
func (r *Runner) printLoop(ctx context.Context) error {
	deliveries := r.source.Deliveries()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				// Source closed, shutdown
				return nil
			}
			r.pipeline.Process(ctx, delivery)
		}
	}
}
