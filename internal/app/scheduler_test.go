package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/media-batch-go/internal/domain"
)

func newTestScheduler(engine domain.Engine, dir string, workers int) *Scheduler {
	cfg := &domain.AcquireConfig{OutputDir: dir, Workers: workers}
	return NewScheduler(engine, realProberShim{}, staticClassifier{},
		domain.Capability{MuxerAvailable: true}, cfg, domain.AuthContext{}, nil)
}

func batchItems(n int) []domain.AcquisitionItem {
	items := make([]domain.AcquisitionItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.AcquisitionItem{
			LogicalID: fmt.Sprintf("item-%03d", i),
			SourceURL: fmt.Sprintf("https://youtu.be/v%d", i),
		})
	}
	return items
}

func TestScheduler_OneOutcomePerItem(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	items := batchItems(20)

	outcomes, err := newTestScheduler(engine, dir, 4).Run(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, outcomes, len(items))

	seen := make(map[string]bool)
	for _, out := range outcomes {
		seen[out.Item.LogicalID] = true
	}
	assert.Len(t, seen, len(items))
}

func TestScheduler_FailureDoesNotAffectSiblings(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		fetchFunc: func(req domain.FetchRequest) error {
			if req.LogicalID == "item-005" {
				return errors.New("exit status 1")
			}
			path := filepath.Join(req.OutputDir, req.LogicalID+".mp4")
			return os.WriteFile(path, []byte("media"), 0644)
		},
	}
	items := batchItems(10)

	outcomes, err := newTestScheduler(engine, dir, 3).Run(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, outcomes, 10)

	summary := domain.Summarize(outcomes)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 9, summary.OK)
}

func TestScheduler_SkipFastPathSkipsEngine(t *testing.T) {
	dir := t.TempDir()
	items := batchItems(5)
	for _, item := range items {
		require.NoError(t, os.WriteFile(filepath.Join(dir, item.LogicalID+".mp4"), []byte("x"), 0644))
	}
	engine := &fakeEngine{}

	outcomes, err := newTestScheduler(engine, dir, 2).Run(context.Background(), items)

	require.NoError(t, err)
	summary := domain.Summarize(outcomes)
	assert.Equal(t, 5, summary.Skipped)
	assert.Equal(t, int32(0), atomic.LoadInt32(&engine.fetchCalls))
}

func TestScheduler_SecondRunSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	items := batchItems(6)

	first, err := newTestScheduler(engine, dir, 3).Run(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 6, domain.Summarize(first).OK)
	assert.Equal(t, int32(6), atomic.LoadInt32(&engine.fetchCalls))

	second, err := newTestScheduler(engine, dir, 3).Run(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 6, domain.Summarize(second).Skipped)
	// no additional engine calls on the rerun
	assert.Equal(t, int32(6), atomic.LoadInt32(&engine.fetchCalls))
}

func TestScheduler_DuplicateIDsSerialized(t *testing.T) {
	dir := t.TempDir()
	var inFlight, maxInFlight int32
	engine := &fakeEngine{
		fetchFunc: func(req domain.FetchRequest) error {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				prev := atomic.LoadInt32(&maxInFlight)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
					break
				}
			}
			defer atomic.AddInt32(&inFlight, -1)
			path := filepath.Join(req.OutputDir, req.LogicalID+".mp4")
			return os.WriteFile(path, []byte("media"), 0644)
		},
	}

	// every item shares one logical id; only the first should download,
	// the rest hit the skip path behind the per-id lock
	items := make([]domain.AcquisitionItem, 0, 6)
	for i := 0; i < 6; i++ {
		items = append(items, domain.AcquisitionItem{
			LogicalID: "shared",
			SourceURL: "https://youtu.be/same",
		})
	}

	outcomes, err := newTestScheduler(engine, dir, 6).Run(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, outcomes, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(1))
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.fetchCalls))

	summary := domain.Summarize(outcomes)
	assert.Equal(t, 1, summary.OK)
	assert.Equal(t, 5, summary.Skipped)
}

func TestScheduler_DefaultsInvalidWorkerBudget(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}

	outcomes, err := newTestScheduler(engine, dir, 0).Run(context.Background(), batchItems(3))

	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
}

func TestScheduler_OnOutcomeObservesEveryResult(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	sched := newTestScheduler(engine, dir, 4)

	var observed int32
	sched.OnOutcome = func(out domain.Outcome) {
		atomic.AddInt32(&observed, 1)
	}

	outcomes, err := sched.Run(context.Background(), batchItems(8))

	require.NoError(t, err)
	assert.Len(t, outcomes, 8)
	assert.Equal(t, int32(8), atomic.LoadInt32(&observed))
}

func TestScheduler_EmptyBatch(t *testing.T) {
	dir := t.TempDir()
	outcomes, err := newTestScheduler(&fakeEngine{}, dir, 4).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}
