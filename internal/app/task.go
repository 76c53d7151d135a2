package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// taskState tracks a task through its lifecycle. Terminal states map onto
// the outcome statuses.
type taskState string

const (
	statePending   taskState = "pending"
	stateProbing   taskState = "probing"
	stateFetching  taskState = "fetching"
	stateVerifying taskState = "verifying"
)

// Task processes one AcquisitionItem: probe for an existing artifact,
// otherwise classify, negotiate a format policy, delegate the transfer to
// the engine once, and re-probe to confirm. Errors from the engine are
// converted to ERROR outcomes at this boundary and never propagate.
type Task struct {
	item       domain.AcquisitionItem
	engine     domain.Engine
	prober     domain.AssetProber
	classifier domain.URLClassifier
	capability domain.Capability
	mode       domain.Mode
	auth       domain.AuthContext
	outputDir  string
	log        *zap.Logger

	state taskState
}

// NewTask creates a task for one item
func NewTask(
	item domain.AcquisitionItem,
	engine domain.Engine,
	prober domain.AssetProber,
	classifier domain.URLClassifier,
	capability domain.Capability,
	mode domain.Mode,
	auth domain.AuthContext,
	outputDir string,
	log *zap.Logger,
) *Task {
	return &Task{
		item:       item,
		engine:     engine,
		prober:     prober,
		classifier: classifier,
		capability: capability,
		mode:       mode,
		auth:       auth,
		outputDir:  outputDir,
		log:        log,
		state:      statePending,
	}
}

func (t *Task) setState(state taskState) {
	t.state = state
	if t.log != nil {
		t.log.Debug("task state",
			zap.String("logical_id", t.item.LogicalID),
			zap.String("state", string(state)))
	}
}

// Run executes the task to a terminal outcome. It never returns an error:
// every failure is folded into the outcome so sibling tasks are unaffected.
func (t *Task) Run(ctx context.Context) domain.Outcome {
	if err := ctx.Err(); err != nil {
		return t.outcome(domain.StatusError, "aborted before start", "", 0)
	}

	// Skip fast-path: an existing final artifact means no network call
	t.setState(stateProbing)
	if existing, err := t.prober.Probe(t.outputDir, t.item.LogicalID); err == nil && existing != nil {
		return t.outcome(domain.StatusSkipped,
			fmt.Sprintf("already exists: %s", existing.Path),
			existing.Path, existing.SizeBytes)
	}

	classification := t.classifier.Classify(ctx, t.item.SourceURL)
	if classification.IsCollection {
		if existing, err := t.prober.ProbeCollection(t.outputDir, t.item.LogicalID); err == nil && existing != nil {
			return t.outcome(domain.StatusSkipped,
				fmt.Sprintf("collection already exists: %s", filepath.Dir(existing.Path)),
				existing.Path, existing.SizeBytes)
		}
	}

	policy := domain.Negotiate(t.capability, t.mode)
	if t.log != nil {
		t.log.Info("negotiated format policy",
			zap.String("logical_id", t.item.LogicalID),
			zap.Bool("collection", classification.IsCollection),
			zap.String("policy", policy.Describe()))
	}

	t.setState(stateFetching)
	err := t.engine.Fetch(ctx, domain.FetchRequest{
		URL:        t.item.SourceURL,
		OutputDir:  t.outputDir,
		LogicalID:  t.item.LogicalID,
		Policy:     policy,
		Auth:       t.auth,
		Collection: classification.IsCollection,
	})
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return t.outcome(domain.StatusError,
				fmt.Sprintf("extraction failed for %s: %v", t.item.SourceURL, err), "", 0)
		}
		return t.outcome(domain.StatusError,
			fmt.Sprintf("error downloading %s: %v", t.item.SourceURL, err), "", 0)
	}

	t.setState(stateVerifying)
	return t.verify(classification.IsCollection, policy)
}

// verify re-probes the filesystem after a reportedly successful transfer.
// A degraded-format artifact (valid container other than the negotiated
// one) is accepted as OK with a distinguishing message.
func (t *Task) verify(collection bool, policy domain.FormatPolicy) domain.Outcome {
	var existing *domain.ExistingAsset
	var err error
	if collection {
		existing, err = t.prober.ProbeCollection(t.outputDir, t.item.LogicalID)
	} else {
		existing, err = t.prober.Probe(t.outputDir, t.item.LogicalID)
	}
	if err != nil || existing == nil {
		return t.outcome(domain.StatusError,
			"downloaded but no final artifact located; check the muxer and post-processing setup", "", 0)
	}

	if hint := policy.OutputContainerHint; hint != "" &&
		!strings.EqualFold(strings.TrimPrefix(filepath.Ext(existing.Path), "."), hint) {
		return t.outcome(domain.StatusOK,
			fmt.Sprintf("completed, non-normalized container: %s", existing.Path),
			existing.Path, existing.SizeBytes)
	}

	return t.outcome(domain.StatusOK,
		fmt.Sprintf("completed: %s", existing.Path),
		existing.Path, existing.SizeBytes)
}

func (t *Task) outcome(status domain.Status, message, path string, size int64) domain.Outcome {
	return domain.Outcome{
		Item:         t.item,
		Status:       status,
		Message:      message,
		ResolvedPath: path,
		SizeBytes:    size,
		FinishedAt:   time.Now(),
	}
}
