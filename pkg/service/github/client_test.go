package github_test

import (
	"context"
	"testing"
	"time"

	"github.com/secmon-lab/argos/pkg/service/github"
)

func TestReleaseFields(t *testing.T) {
	t.Parallel()

	rel := &github.Release{
		TagName:     "v1.4.0",
		Name:        "v1.4.0 sweep tuning",
		URL:         "https://github.com/secmon-lab/argos/releases/tag/v1.4.0",
		PublishedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Prerelease:  false,
	}

	if rel.TagName != "v1.4.0" {
		t.Errorf("expected TagName 'v1.4.0', got %q", rel.TagName)
	}
	if rel.Prerelease {
		t.Error("expected Prerelease false")
	}
	if rel.PublishedAt.IsZero() {
		t.Error("expected PublishedAt to be set")
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	if _, err := github.NewWithToken(context.Background(), ""); err == nil {
		t.Error("expected error for empty token")
	}

	svc, err := github.NewWithToken(context.Background(), "ghp_dummy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	// A malformed key must fail transport construction
	if _, err := github.New(12345, 67890, "not a pem"); err == nil {
		t.Error("expected error for invalid private key")
	}
}
