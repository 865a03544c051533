package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/cli/config"
)

func TestGitHubIsConfigured(t *testing.T) {
	tests := []struct {
		name           string
		appID          int
		installationID int
		privateKey     string
		token          string
		wantConfigured bool
	}{
		{"app credentials complete", 123, 456, "key", "", true},
		{"app ID missing", 0, 456, "key", "", false},
		{"installation ID missing", 123, 0, "key", "", false},
		{"private key missing", 123, 456, "", "", false},
		{"token only", 0, 0, "", "ghp_token", true},
		{"partial app but token set", 123, 0, "", "ghp_token", true},
		{"nothing set", 0, 0, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			github := config.NewGitHubForTest(tt.appID, tt.installationID, tt.privateKey, tt.token)
			gt.Value(t, github.IsConfigured()).Equal(tt.wantConfigured)
		})
	}
}

func TestGitHubConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil when unconfigured", func(t *testing.T) {
		github := config.NewGitHubForTest(0, 0, "", "")
		svc, err := github.Configure(ctx)
		gt.NoError(t, err)
		gt.Value(t, svc == nil).Equal(true)
	})

	t.Run("rejects malformed App private key", func(t *testing.T) {
		github := config.NewGitHubForTest(123, 456, "not a pem key", "")
		_, err := github.Configure(ctx)
		gt.Value(t, err).NotNil()
	})

	t.Run("creates a client from a plain token", func(t *testing.T) {
		github := config.NewGitHubForTest(0, 0, "", "ghp_token")
		svc, err := github.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}
