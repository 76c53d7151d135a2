package infrastructure

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// finalExtensions is the allow-list of completed media containers. Anything
// else (subtitle files, metadata json, thumbnails) never counts as a final
// artifact.
var finalExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".webm": {},
	".mov":  {},
	".m4v":  {},
	".mp3":  {},
	".aac":  {},
	".opus": {},
	".m4a":  {},
}

// tempMarkers appear in the names of partial downloads, resume indexes and
// scratch files written by the engine mid-transfer.
var tempMarkers = []string{".part", ".ytdl", ".temp", ".tmp"}

// Prober inspects the output directory for previously completed artifacts.
// It is a pure filesystem read with no side effects.
type Prober struct{}

// NewProber creates a new prober
func NewProber() *Prober {
	return &Prober{}
}

// Probe looks for a final artifact whose filename stem equals logicalID,
// with any allow-listed extension. Temporary and zero-byte files are
// ignored. When several valid containers exist for the same stem the
// lexically first path wins, so repeated probes are deterministic.
func (p *Prober) Probe(outputDir, logicalID string) (*domain.ExistingAsset, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	// ReadDir returns entries sorted by name
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if strings.TrimSuffix(name, ext) != logicalID {
			continue
		}
		if asset := qualify(filepath.Join(outputDir, name)); asset != nil {
			return asset, nil
		}
	}
	return nil, nil
}

// ProbeCollection looks for any final artifact inside the per-id collection
// subdirectory, walking it recursively. Paths are visited in lexical order
// so the first match is deterministic.
func (p *Prober) ProbeCollection(outputDir, logicalID string) (*domain.ExistingAsset, error) {
	root := filepath.Join(outputDir, logicalID)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	var found *domain.ExistingAsset
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != nil {
			return err
		}
		if asset := qualify(path); asset != nil {
			found = asset
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// qualify returns the asset if path is a completed, non-empty final
// artifact, nil otherwise.
func qualify(path string) *domain.ExistingAsset {
	lower := strings.ToLower(path)
	for _, marker := range tempMarkers {
		if strings.Contains(lower, marker) {
			return nil
		}
	}
	if _, ok := finalExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil
	}
	return &domain.ExistingAsset{Path: path, SizeBytes: info.Size()}
}
