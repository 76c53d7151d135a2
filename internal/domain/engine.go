package domain

import (
	"context"
	"errors"
)

// ErrExtraction marks failures in the metadata-extraction phase, before any
// bytes transfer. Callers distinguish it from transfer failures with
// errors.Is.
var ErrExtraction = errors.New("extraction failed")

// MediaInfo is the engine's metadata for a URL.
type MediaInfo struct {
	ID         string
	Title      string
	Type       string
	EntryCount int
}

// IsCollection reports whether the info describes a playlist of entries
// rather than a single media item.
func (m *MediaInfo) IsCollection() bool {
	return m != nil && m.Type == "playlist"
}

// AuthContext carries site credentials for the engine. A cookie file takes
// precedence over browser cookie extraction.
type AuthContext struct {
	CookieFile string
	Browser    string
	Profile    string
}

// FetchRequest is everything the engine needs to transfer one item.
type FetchRequest struct {
	URL        string
	OutputDir  string
	LogicalID  string
	Policy     FormatPolicy
	Auth       AuthContext
	Collection bool
}

// Engine abstracts the external download tool.
type Engine interface {
	// Inspect fetches metadata for a URL without transferring media.
	Inspect(ctx context.Context, url string) (*MediaInfo, error)
	// Fetch transfers one item to disk per the request's policy.
	Fetch(ctx context.Context, req FetchRequest) error
	// ListFormats prints the available format table for a URL.
	ListFormats(ctx context.Context, url string) error
}
