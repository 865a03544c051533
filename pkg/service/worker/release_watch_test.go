package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository/memory"
	"github.com/secmon-lab/argos/pkg/service/discord"
	"github.com/secmon-lab/argos/pkg/service/github"
	"github.com/secmon-lab/argos/pkg/service/worker"
)

type mockReleaseSource struct {
	mu      sync.RWMutex
	release *github.Release
	err     error
	calls   int
}

func (m *mockReleaseSource) LatestRelease(ctx context.Context, owner, repo string) (*github.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.release == nil {
		return nil, github.ErrNoRelease
	}
	return m.release, nil
}

func (m *mockReleaseSource) setRelease(rel *github.Release) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = rel
}

func (m *mockReleaseSource) callCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

type notice struct {
	channelID types.ChannelID
	msg       *discord.Message
}

// recordingNotifier implements discord.Service and records posted messages.
type recordingNotifier struct {
	mu     sync.RWMutex
	posted []notice
}

func (m *recordingNotifier) PostMessage(ctx context.Context, channelID types.ChannelID, msg *discord.Message) (types.MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, notice{channelID: channelID, msg: msg})
	return types.MessageID(fmt.Sprintf("5000000000000000%02d", len(m.posted))), nil
}

func (m *recordingNotifier) UpdateMessage(ctx context.Context, channelID types.ChannelID, messageID types.MessageID, msg *discord.Message) error {
	return nil
}

func (m *recordingNotifier) GuildName(ctx context.Context, guildID types.GuildID) (string, error) {
	return "Argos HQ", nil
}

func (m *recordingNotifier) GuildOwnerID(ctx context.Context, guildID types.GuildID) (types.UserID, error) {
	return types.UserID("300000000000000099"), nil
}

func (m *recordingNotifier) postCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.posted)
}

func (m *recordingNotifier) lastPost() notice {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.posted[len(m.posted)-1]
}

func seedHomeConfig(t *testing.T, repo *memory.Memory) {
	t.Helper()
	channelID := alertChannelID
	if _, err := repo.GuildConfig().Upsert(context.Background(), homeGuildID, &model.GuildConfigPatch{
		AlertChannelID: &channelID,
	}); err != nil {
		t.Fatalf("failed to seed home config: %v", err)
	}
}

func TestReleaseWatchWorker_AnnouncesNewReleaseOnce(t *testing.T) {
	repo := memory.New()
	seedHomeConfig(t, repo)

	gh := &mockReleaseSource{release: &github.Release{
		TagName:     "v1.4.0",
		Name:        "v1.4.0 sweep tuning",
		URL:         "https://github.com/secmon-lab/argos/releases/tag/v1.4.0",
		PublishedAt: time.Now(),
	}}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "v1.3.0", 30*time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	if got := notifier.postCount(); got != 1 {
		t.Fatalf("expected exactly one notice after the initial check, got %d", got)
	}
	post := notifier.lastPost()
	if post.channelID != alertChannelID {
		t.Errorf("notice went to channel %s, want %s", post.channelID, alertChannelID)
	}
	if len(post.msg.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(post.msg.Embeds))
	}
	if title := post.msg.Embeds[0].Title; title != "📦 Update available: v1.4.0" {
		t.Errorf("unexpected embed title: %q", title)
	}

	// Further ticks must not repeat the same tag
	time.Sleep(100 * time.Millisecond)

	if got := notifier.postCount(); got != 1 {
		t.Errorf("expected the tag to be announced once per process, got %d notices", got)
	}
	if gh.callCount() < 2 {
		t.Errorf("expected polling to continue after the announcement, got %d calls", gh.callCount())
	}
}

func TestReleaseWatchWorker_AnnouncesEachNewTag(t *testing.T) {
	repo := memory.New()
	seedHomeConfig(t, repo)

	gh := &mockReleaseSource{release: &github.Release{TagName: "v1.4.0"}}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "v1.3.0", 30*time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	gh.setRelease(&github.Release{TagName: "v1.5.0"})
	time.Sleep(100 * time.Millisecond)

	if got := notifier.postCount(); got != 2 {
		t.Fatalf("expected one notice per tag, got %d", got)
	}
	if title := notifier.lastPost().msg.Embeds[0].Title; title != "📦 Update available: v1.5.0" {
		t.Errorf("unexpected embed title for second tag: %q", title)
	}
}

func TestReleaseWatchWorker_SkipsWhenUpToDate(t *testing.T) {
	repo := memory.New()
	seedHomeConfig(t, repo)

	// Tag comparison ignores the v prefix
	gh := &mockReleaseSource{release: &github.Release{TagName: "v1.4.0"}}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "1.4.0", 30*time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(80 * time.Millisecond)

	if got := notifier.postCount(); got != 0 {
		t.Errorf("expected no notice when the running version matches, got %d", got)
	}
	if gh.callCount() < 1 {
		t.Error("expected the worker to poll at least once")
	}
}

func TestReleaseWatchWorker_SkipsPrereleases(t *testing.T) {
	repo := memory.New()
	seedHomeConfig(t, repo)

	gh := &mockReleaseSource{release: &github.Release{TagName: "v2.0.0-rc.1", Prerelease: true}}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "v1.3.0", 30*time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	if got := notifier.postCount(); got != 0 {
		t.Errorf("expected no notice for a prerelease, got %d", got)
	}
}

func TestReleaseWatchWorker_SkipsWithoutHomeConfig(t *testing.T) {
	repo := memory.New()

	gh := &mockReleaseSource{release: &github.Release{TagName: "v1.4.0"}}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "v1.3.0", 30*time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	if got := notifier.postCount(); got != 0 {
		t.Errorf("expected no notice before the home guild is configured, got %d", got)
	}
}

func TestReleaseWatchWorker_KeepsPollingAfterAPIFailure(t *testing.T) {
	repo := memory.New()
	seedHomeConfig(t, repo)

	gh := &mockReleaseSource{err: errors.New("api quota exceeded")}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "v1.3.0", 30*time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(150 * time.Millisecond)

	if gh.callCount() < 2 {
		t.Errorf("expected the worker to keep polling after failures, got %d calls", gh.callCount())
	}
	if got := notifier.postCount(); got != 0 {
		t.Errorf("expected no notice while the API is failing, got %d", got)
	}
}

func TestReleaseWatchWorker_StopsCleanly(t *testing.T) {
	repo := memory.New()
	gh := &mockReleaseSource{}
	notifier := &recordingNotifier{}

	w := worker.NewReleaseWatchWorker(repo, notifier, gh, homeGuildID, "secmon-lab", "argos", "v1.3.0", time.Hour)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	w.Stop()
	if d := time.Since(start); d > time.Second {
		t.Errorf("worker took too long to stop: %v", d)
	}
}
