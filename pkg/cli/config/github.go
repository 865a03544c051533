package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/service/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds configuration for release lookups on the GitHub API
type GitHub struct {
	appID          int
	installationID int
	privateKey     string
	token          string
}

// Flags returns CLI flags for GitHub configuration
func (g *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("ARGOS_GITHUB_APP_ID"),
			Destination: &g.appID,
		},
		&cli.IntFlag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App Installation ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("ARGOS_GITHUB_APP_INSTALLATION_ID"),
			Destination: &g.installationID,
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App Private Key (PEM string or file path)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("ARGOS_GITHUB_APP_PRIVATE_KEY"),
			Destination: &g.privateKey,
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token (used when App credentials are absent)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("ARGOS_GITHUB_TOKEN"),
			Destination: &g.token,
		},
	}
}

// LogAttrs returns log attributes for the GitHub configuration (secrets hidden)
func (g *GitHub) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("app_id", g.appID),
		slog.Int("installation_id", g.installationID),
		slog.Bool("token_set", g.token != ""),
	}
}

func (g *GitHub) hasApp() bool {
	return g.appID != 0 && g.installationID != 0 && g.privateKey != ""
}

// IsConfigured returns true if either App credentials or a token are set
func (g *GitHub) IsConfigured() bool {
	return g.hasApp() || g.token != ""
}

// Configure creates a new GitHub Service from the configured credentials. App
// credentials take precedence over a plain token. Returns nil if neither is
// configured (release checks will be disabled).
func (g *GitHub) Configure(ctx context.Context) (github.Service, error) {
	switch {
	case g.hasApp():
		svc, err := github.New(int64(g.appID), int64(g.installationID), g.privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App client")
		}
		return svc, nil

	case g.token != "":
		svc, err := github.NewWithToken(ctx, g.token)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub token client")
		}
		return svc, nil

	default:
		return nil, nil
	}
}
