package domain

import (
	"context"
	"time"
)

// Status is the terminal disposition of one acquisition item.
type Status string

const (
	StatusOK      Status = "OK"
	StatusSkipped Status = "SKIPPED"
	StatusError   Status = "ERROR"
)

// AcquisitionItem is one unit of work: a logical identifier that names the
// artifact on disk, paired with the source URL to fetch it from. The same
// logical id may appear more than once in a batch.
type AcquisitionItem struct {
	LogicalID string
	SourceURL string
}

// Outcome is the terminal result of processing one item. Exactly one
// outcome is produced per submitted item.
type Outcome struct {
	Item         AcquisitionItem
	Status       Status
	Message      string
	ResolvedPath string
	SizeBytes    int64
	FinishedAt   time.Time
}

// ExistingAsset describes a final artifact found on disk during probing.
type ExistingAsset struct {
	Path      string
	SizeBytes int64
}

// Classification is the memoized answer to "does this URL name a
// collection of media entries or a single one".
type Classification struct {
	URL          string
	IsCollection bool
	Info         *MediaInfo
}

// Summary aggregates the terminal statuses of a finished batch.
type Summary struct {
	Total   int
	OK      int
	Skipped int
	Errors  int
}

// Summarize counts outcomes per terminal status.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, out := range outcomes {
		switch out.Status {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
		case StatusError:
			s.Errors++
		}
	}
	return s
}

// AssetProber answers whether a final artifact for a logical id already
// exists under the output directory.
type AssetProber interface {
	// Probe looks for a single-media artifact whose stem equals logicalID.
	Probe(outputDir, logicalID string) (*ExistingAsset, error)
	// ProbeCollection looks for any final artifact under the per-collection
	// subdirectory named by logicalID.
	ProbeCollection(outputDir, logicalID string) (*ExistingAsset, error)
}

// URLClassifier decides whether a URL names a collection. Classification
// never fails; on unreachable metadata it degrades to URL-shape heuristics.
type URLClassifier interface {
	Classify(ctx context.Context, url string) Classification
}
