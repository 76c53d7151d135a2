package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// Scheduler runs acquisition tasks concurrently under a bounded worker
// budget. One task's failure never cancels its siblings; the scheduler
// drains every submitted task before returning. Results arrive in
// completion order, correlated to items by the embedded logical id.
type Scheduler struct {
	engine     domain.Engine
	prober     domain.AssetProber
	classifier domain.URLClassifier
	capability domain.Capability
	config     *domain.AcquireConfig
	auth       domain.AuthContext
	log        *zap.Logger

	// OnOutcome, when set, is invoked from a single collector goroutine
	// as each task completes.
	OnOutcome func(domain.Outcome)

	mu      sync.Mutex
	idLocks map[string]*sync.Mutex
}

// NewScheduler creates a scheduler
func NewScheduler(
	engine domain.Engine,
	prober domain.AssetProber,
	classifier domain.URLClassifier,
	capability domain.Capability,
	config *domain.AcquireConfig,
	auth domain.AuthContext,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		engine:     engine,
		prober:     prober,
		classifier: classifier,
		capability: capability,
		config:     config,
		auth:       auth,
		log:        log,
		idLocks:    make(map[string]*sync.Mutex),
	}
}

// Run processes all items and returns exactly one outcome per item, in
// completion order. The output directory is created once before dispatch.
// Cancelling ctx aborts the whole batch; there is no single-task
// cancellation.
func (s *Scheduler) Run(ctx context.Context, items []domain.AcquisitionItem) ([]domain.Outcome, error) {
	if err := os.MkdirAll(s.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	budget := s.config.Workers
	if budget < 1 {
		budget = 1
	}

	results := make(chan domain.Outcome, len(items))
	outcomes := make([]domain.Outcome, 0, len(items))

	var collector sync.WaitGroup
	collector.Add(1)
	go func() {
		defer collector.Done()
		for out := range results {
			outcomes = append(outcomes, out)
			if s.OnOutcome != nil {
				s.OnOutcome(out)
			}
		}
	}()

	// Workers return nil even on task failure so the group never cancels
	// siblings; only the parent ctx aborts the batch.
	g := new(errgroup.Group)
	g.SetLimit(budget)
	for _, item := range items {
		item := item
		g.Go(func() error {
			// Duplicate logical ids would otherwise race on the same
			// output path.
			lock := s.lockFor(item.LogicalID)
			lock.Lock()
			defer lock.Unlock()

			task := NewTask(item, s.engine, s.prober, s.classifier,
				s.capability, s.config.Mode(), s.auth, s.config.OutputDir, s.log)
			results <- task.Run(ctx)

			if s.config.Sleep > 0 {
				select {
				case <-time.After(s.config.Sleep):
				case <-ctx.Done():
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	collector.Wait()
	return outcomes, nil
}

func (s *Scheduler) lockFor(logicalID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.idLocks[logicalID]
	if !ok {
		lock = &sync.Mutex{}
		s.idLocks[logicalID] = lock
	}
	return lock
}
