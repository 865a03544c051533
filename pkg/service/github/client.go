package github

import (
	"context"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// ErrNoRelease is returned when the repository has no published release
var ErrNoRelease = goerr.New("repository has no published release")

type client struct {
	gql *githubv4.Client
}

// New creates a Service using GitHub App authentication.
// privateKey can be a PEM string or a file path to a PEM file.
func New(appID, installationID int64, privateKey string) (Service, error) {
	var key []byte

	// Try reading as file path first
	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		key = data
	} else {
		// Treat as PEM string
		key = []byte(privateKey)
	}

	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{gql: githubv4.NewClient(&http.Client{Transport: tr})}, nil
}

// NewWithToken creates a Service using a personal access token
func NewWithToken(ctx context.Context, token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("token is required")
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &client{gql: githubv4.NewClient(oauth2.NewClient(ctx, src))}, nil
}

// LatestRelease returns the newest published, non-draft release
func (c *client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	var q latestReleaseQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
		"first": githubv4.Int(10),
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, goerr.Wrap(err, "failed to query releases",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	for _, node := range q.Repository.Releases.Nodes {
		if bool(node.IsDraft) {
			continue
		}
		return &Release{
			TagName:     string(node.TagName),
			Name:        string(node.Name),
			URL:         string(node.URL),
			PublishedAt: node.PublishedAt.Time,
			Prerelease:  bool(node.IsPrerelease),
		}, nil
	}

	return nil, goerr.Wrap(ErrNoRelease, "no release found",
		goerr.V("owner", owner), goerr.V("repo", repo))
}

// GraphQL query types

type latestReleaseQuery struct {
	Repository struct {
		Releases struct {
			Nodes []struct {
				TagName      githubv4.String
				Name         githubv4.String
				URL          githubv4.String
				PublishedAt  githubv4.DateTime
				IsPrerelease githubv4.Boolean
				IsDraft      githubv4.Boolean
			}
		} `graphql:"releases(first: $first, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}
