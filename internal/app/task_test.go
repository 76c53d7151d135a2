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

// fakeEngine implements domain.Engine and writes a file on Fetch so the
// verification probe finds a real artifact.
type fakeEngine struct {
	fetchCalls   int32
	inspectCalls int32
	inspectFunc  func(url string) (*domain.MediaInfo, error)
	fetchFunc    func(req domain.FetchRequest) error
	writeExt     string // extension of the artifact written on Fetch
}

func (f *fakeEngine) Inspect(ctx context.Context, url string) (*domain.MediaInfo, error) {
	atomic.AddInt32(&f.inspectCalls, 1)
	if f.inspectFunc != nil {
		return f.inspectFunc(url)
	}
	return &domain.MediaInfo{ID: "abc", Type: "video"}, nil
}

func (f *fakeEngine) Fetch(ctx context.Context, req domain.FetchRequest) error {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.fetchFunc != nil {
		return f.fetchFunc(req)
	}
	ext := f.writeExt
	if ext == "" {
		ext = "mp4"
	}
	path := filepath.Join(req.OutputDir, req.LogicalID+"."+ext)
	if req.Collection {
		path = filepath.Join(req.OutputDir, req.LogicalID, "1-first."+ext)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte("media"), 0644)
}

func (f *fakeEngine) ListFormats(ctx context.Context, url string) error { return nil }

// fakeProber implements domain.AssetProber against the real filesystem via
// the same rules as the production prober, simplified for tests.
type realProberShim struct{}

func (realProberShim) Probe(outputDir, logicalID string) (*domain.ExistingAsset, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if name != logicalID+ext {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		switch ext {
		case ".mp4", ".mkv", ".webm", ".mov", ".m4v", ".mp3", ".aac", ".opus", ".m4a":
			return &domain.ExistingAsset{Path: filepath.Join(outputDir, name), SizeBytes: info.Size()}, nil
		}
	}
	return nil, nil
}

func (realProberShim) ProbeCollection(outputDir, logicalID string) (*domain.ExistingAsset, error) {
	root := filepath.Join(outputDir, logicalID)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		return &domain.ExistingAsset{Path: filepath.Join(root, entry.Name()), SizeBytes: info.Size()}, nil
	}
	return nil, nil
}

// staticClassifier implements domain.URLClassifier
type staticClassifier struct {
	collection bool
}

func (s staticClassifier) Classify(ctx context.Context, url string) domain.Classification {
	return domain.Classification{URL: url, IsCollection: s.collection}
}

func newTestTask(item domain.AcquisitionItem, engine domain.Engine, outputDir string, collection bool) *Task {
	return NewTask(item, engine, realProberShim{}, staticClassifier{collection: collection},
		domain.Capability{MuxerAvailable: true}, domain.Mode{}, domain.AuthContext{}, outputDir, nil)
}

func TestTask_FreshDownload(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	out := newTestTask(item, engine, dir, false).Run(context.Background())

	assert.Equal(t, domain.StatusOK, out.Status)
	assert.Equal(t, filepath.Join(dir, "p1.mp4"), out.ResolvedPath)
	assert.Greater(t, out.SizeBytes, int64(0))
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.fetchCalls))
}

func TestTask_SkipsExistingAsset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p1.mp4"), []byte("already here"), 0644))
	engine := &fakeEngine{}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	out := newTestTask(item, engine, dir, false).Run(context.Background())

	assert.Equal(t, domain.StatusSkipped, out.Status)
	assert.Contains(t, out.Message, "already exists")
	// no engine call on the skip fast-path
	assert.Equal(t, int32(0), atomic.LoadInt32(&engine.fetchCalls))
}

func TestTask_ExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		fetchFunc: func(req domain.FetchRequest) error {
			return fmt.Errorf("%w: video unavailable", domain.ErrExtraction)
		},
	}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	out := newTestTask(item, engine, dir, false).Run(context.Background())

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "extraction failed")
	assert.Empty(t, out.ResolvedPath)
}

func TestTask_TransferFailure(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{
		fetchFunc: func(req domain.FetchRequest) error {
			return errors.New("exit status 1")
		},
	}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	out := newTestTask(item, engine, dir, false).Run(context.Background())

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "error downloading")
}

func TestTask_VerificationFailure(t *testing.T) {
	dir := t.TempDir()
	// engine claims success but writes nothing
	engine := &fakeEngine{fetchFunc: func(req domain.FetchRequest) error { return nil }}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	out := newTestTask(item, engine, dir, false).Run(context.Background())

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "no final artifact")
}

func TestTask_DegradedContainerAccepted(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{writeExt: "webm"}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	out := newTestTask(item, engine, dir, false).Run(context.Background())

	assert.Equal(t, domain.StatusOK, out.Status)
	assert.Contains(t, out.Message, "non-normalized container")
	assert.Equal(t, filepath.Join(dir, "p1.webm"), out.ResolvedPath)
}

func TestTask_Collection(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	item := domain.AcquisitionItem{LogicalID: "pl1", SourceURL: "https://www.youtube.com/playlist?list=PLx"}

	out := newTestTask(item, engine, dir, true).Run(context.Background())

	assert.Equal(t, domain.StatusOK, out.Status)
	assert.Contains(t, out.ResolvedPath, filepath.Join(dir, "pl1"))
}

func TestTask_AbortedContext(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	item := domain.AcquisitionItem{LogicalID: "p1", SourceURL: "https://youtu.be/abc"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := newTestTask(item, engine, dir, false).Run(ctx)

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(&engine.fetchCalls))
}
