package github

import (
	"context"
	"time"
)

// Service provides release metadata lookups for the update watcher
type Service interface {
	// LatestRelease returns the newest published, non-draft release of the
	// repository. Returns ErrNoRelease when the repository has none.
	LatestRelease(ctx context.Context, owner, repo string) (*Release, error)
}

// Release describes one published GitHub release
type Release struct {
	TagName     string
	Name        string
	URL         string
	PublishedAt time.Time
	Prerelease  bool
}
