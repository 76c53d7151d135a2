package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// cleanupPatterns match the partial artifacts the engine leaves behind
// after an interrupted transfer: partial downloads, resume indexes and
// per-fragment scratch files.
var cleanupPatterns = []string{
	"*.part",
	"*.ytdl",
	"*.temp",
	"*.tmp",
	"*.part-Frag*",
}

// CleanupResult reports what a cleanup pass did
type CleanupResult struct {
	Removed   int
	Remaining int
}

// CleanupPartials removes partial artifacts under dir, recursively, and
// counts the final artifacts that remain afterwards.
func CleanupPartials(dir string, log *zap.Logger) (*CleanupResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("output directory not found: %w", err)
	}

	result := &CleanupResult{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		for _, pattern := range cleanupPatterns {
			matched, _ := filepath.Match(pattern, name)
			if !matched {
				continue
			}
			if rmErr := os.Remove(path); rmErr != nil {
				if log != nil {
					log.Warn("failed to remove partial artifact",
						zap.String("path", path),
						zap.Error(rmErr))
				}
				return nil
			}
			result.Removed++
			if log != nil {
				log.Info("removed partial artifact", zap.String("path", path))
			}
			return nil
		}
		if qualify(path) != nil {
			result.Remaining++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
