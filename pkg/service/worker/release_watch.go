package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"github.com/secmon-lab/argos/pkg/service/discord"
	"github.com/secmon-lab/argos/pkg/service/github"
	"github.com/secmon-lab/argos/pkg/utils/logging"
)

// ReleaseWatchWorker polls the published releases of the bot's own repository
// and posts an update notice to the home alert channel when the latest stable
// release differs from the running version. A tag is announced at most once
// per process; a restart may announce it again.
type ReleaseWatchWorker struct {
	repo        interfaces.Repository
	discord     discord.Service
	github      github.Service
	homeGuildID types.GuildID
	repoOwner   string
	repoName    string
	version     string
	interval    time.Duration

	// announcedTag is touched only by the run goroutine
	announcedTag string

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReleaseWatchWorker creates a new worker for announcing bot updates
func NewReleaseWatchWorker(repo interfaces.Repository, discordSvc discord.Service, githubSvc github.Service, homeGuildID types.GuildID, repoOwner, repoName, version string, interval time.Duration) *ReleaseWatchWorker {
	return &ReleaseWatchWorker{
		repo:        repo,
		discord:     discordSvc,
		github:      githubSvc,
		homeGuildID: homeGuildID,
		repoOwner:   repoOwner,
		repoName:    repoName,
		version:     version,
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background release polling loop
// - Initial check and periodic polls both run in a background goroutine
// - Does not block server startup
func (w *ReleaseWatchWorker) Start(ctx context.Context) error {
	logging.Default().Info("release watch worker starting",
		"repository", w.repoOwner+"/"+w.repoName,
		"running", w.version,
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ReleaseWatchWorker) Stop() {
	logging.Default().Info("release watch worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("release watch worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *ReleaseWatchWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.check(ctx); err != nil {
		logging.Default().Error("initial release check failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.check(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("release check failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("release watch worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("release watch worker context cancelled")
			return
		}
	}
}

// check performs a single poll and posts a notice when an unannounced newer
// release is found
func (w *ReleaseWatchWorker) check(ctx context.Context) error {
	rel, err := w.github.LatestRelease(ctx, w.repoOwner, w.repoName)
	if err != nil {
		if errors.Is(err, github.ErrNoRelease) {
			return nil
		}
		return goerr.Wrap(err, "failed to fetch latest release")
	}
	if rel.Prerelease {
		return nil
	}

	if strings.TrimPrefix(rel.TagName, "v") == strings.TrimPrefix(w.version, "v") {
		return nil
	}
	if rel.TagName == w.announcedTag {
		return nil
	}

	cfg, err := w.repo.GuildConfig().Get(ctx, w.homeGuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No alert channel configured yet, nothing to announce into
			return nil
		}
		return goerr.Wrap(err, "failed to load home guild config")
	}
	if cfg.AlertChannelID == "" {
		return nil
	}

	if _, err := w.discord.PostMessage(ctx, cfg.AlertChannelID, buildReleaseMessage(rel, w.version)); err != nil {
		return goerr.Wrap(err, "failed to post update notice", goerr.V("tag", rel.TagName))
	}

	w.announcedTag = rel.TagName
	logging.Default().Info("update notice posted",
		"tag", rel.TagName,
		"running", w.version)

	return nil
}

func buildReleaseMessage(rel *github.Release, running string) *discord.Message {
	embed := &discordgo.MessageEmbed{
		Title:       "📦 Update available: " + rel.TagName,
		Description: "A newer release of Argos has been published.",
		URL:         rel.URL,
		Color:       0xFEE75C,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Latest", Value: rel.TagName, Inline: true},
			{Name: "Running", Value: running, Inline: true},
		},
	}
	if rel.Name != "" && rel.Name != rel.TagName {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Release",
			Value: rel.Name,
		})
	}
	if !rel.PublishedAt.IsZero() {
		embed.Timestamp = rel.PublishedAt.Format(time.RFC3339)
	}

	return &discord.Message{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
}
