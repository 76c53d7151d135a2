package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// ItemState is the externally visible state of one item during a run
type ItemState struct {
	LogicalID    string        `json:"logical_id"`
	SourceURL    string        `json:"source_url"`
	Status       domain.Status `json:"status,omitempty"`
	Message      string        `json:"message,omitempty"`
	ResolvedPath string        `json:"resolved_path,omitempty"`
	Done         bool          `json:"done"`
}

// ProgressSnapshot is a point-in-time view of a batch run
type ProgressSnapshot struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Summary   domain.Summary `json:"summary"`
	Running   bool           `json:"running"`
}

// Progress tracks the live state of a batch run for the status API.
// Safe for concurrent use.
type Progress struct {
	mu        sync.RWMutex
	runID     string
	startedAt time.Time
	items     []ItemState
	index     map[string][]int // logical id -> item positions
	summary   domain.Summary
	completed int
	finished  bool
}

// NewProgress creates a tracker for one run with a fresh run id
func NewProgress() *Progress {
	return &Progress{
		runID: uuid.New().String(),
		index: make(map[string][]int),
	}
}

// RunID returns the run identifier
func (p *Progress) RunID() string {
	return p.runID
}

// Begin registers the items of the batch
func (p *Progress) Begin(items []domain.AcquisitionItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.items = make([]ItemState, len(items))
	p.summary = domain.Summary{Total: len(items)}
	for i, item := range items {
		p.items[i] = ItemState{LogicalID: item.LogicalID, SourceURL: item.SourceURL}
		p.index[item.LogicalID] = append(p.index[item.LogicalID], i)
	}
}

// Observe records one completed outcome. Duplicate logical ids fill their
// positions in input order.
func (p *Progress) Observe(out domain.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, i := range p.index[out.Item.LogicalID] {
		if p.items[i].Done {
			continue
		}
		p.items[i].Status = out.Status
		p.items[i].Message = out.Message
		p.items[i].ResolvedPath = out.ResolvedPath
		p.items[i].Done = true
		break
	}

	p.completed++
	switch out.Status {
	case domain.StatusOK:
		p.summary.OK++
	case domain.StatusSkipped:
		p.summary.Skipped++
	case domain.StatusError:
		p.summary.Errors++
	}
}

// Finish marks the run as drained
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

// Snapshot returns the current aggregate view
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ProgressSnapshot{
		RunID:     p.runID,
		StartedAt: p.startedAt,
		Total:     len(p.items),
		Completed: p.completed,
		Summary:   p.summary,
		Running:   !p.finished,
	}
}

// Items returns a copy of the per-item states in input order
func (p *Progress) Items() []ItemState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]ItemState(nil), p.items...)
}
