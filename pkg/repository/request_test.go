package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"github.com/secmon-lab/argos/pkg/repository/memory"
)

func runRequestRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get round-trip an external request", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		guildID := newGuildID()

		req := model.NewExternalRequest(types.NewRequestID(), guildID,
			"111111111111111111", "alice", "eu-west datacenter",
			"Ransomware note on a file server", "alice@example.com")
		req.OriginMessage = model.MessageRef{ChannelID: "222222222222222222", MessageID: "333333333333333333"}
		req.AlertMessage = model.MessageRef{ChannelID: "444444444444444444", MessageID: "555555555555555555"}

		created, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Request().Get(ctx, req.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(req.ID)
		gt.Bool(t, got.External).True()
		gt.Value(t, got.ExternalGuildID).Equal(guildID)
		gt.Value(t, got.RequesterID).Equal(types.UserID("111111111111111111"))
		gt.Value(t, got.RequesterName).Equal("alice")
		gt.Value(t, got.Location).Equal("eu-west datacenter")
		gt.Value(t, got.Details).Equal("Ransomware note on a file server")
		gt.Value(t, got.Contact).Equal("alice@example.com")
		gt.Value(t, got.Status).Equal(types.RequestStatusPending)
		gt.Array(t, got.ResponderIDs).Length(0)
		gt.Value(t, got.OriginMessage.MessageID).Equal(types.MessageID("333333333333333333"))
		gt.Value(t, got.AlertMessage.MessageID).Equal(types.MessageID("555555555555555555"))
	})

	t.Run("Create rejects a duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewInternalRequest(types.NewRequestID(),
			"111111111111111111", "alice", "build pipeline", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		dup := model.NewInternalRequest(req.ID,
			"666666666666666666", "bob", "other location", "")
		_, err = repo.Request().Create(ctx, dup)
		gt.Error(t, err).Is(repository.ErrAlreadyExists)

		// The original row is untouched
		got, err := repo.Request().Get(ctx, req.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.RequesterName).Equal("alice")
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Request().Get(ctx, types.NewRequestID())
		gt.Error(t, err).Is(repository.ErrNotFound)
	})

	t.Run("Update overwrites view references", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewInternalRequest(types.NewRequestID(),
			"111111111111111111", "alice", "build pipeline", "")
		created, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		created.AlertMessage = model.MessageRef{ChannelID: "444444444444444444", MessageID: "555555555555555555"}
		updated, err := repo.Request().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.AlertMessage.MessageID).Equal(types.MessageID("555555555555555555"))

		got, err := repo.Request().Get(ctx, req.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AlertMessage.ChannelID).Equal(types.ChannelID("444444444444444444"))
		gt.Value(t, got.CreatedAt.Unix()).Equal(created.CreatedAt.Unix())
	})

	t.Run("AddResponder promotes pending to responding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewExternalRequest(types.NewRequestID(), newGuildID(),
			"111111111111111111", "alice", "eu-west", "Phishing wave", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		updated, already, err := repo.Request().AddResponder(ctx, req.ID, "777777777777777777")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).False()
		gt.Value(t, updated.Status).Equal(types.RequestStatusResponding)
		gt.Array(t, updated.ResponderIDs).Length(1)
		gt.Value(t, updated.ResponderIDs[0]).Equal(types.UserID("777777777777777777"))
	})

	t.Run("AddResponder is idempotent per user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewExternalRequest(types.NewRequestID(), newGuildID(),
			"111111111111111111", "alice", "eu-west", "Phishing wave", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		_, already, err := repo.Request().AddResponder(ctx, req.ID, "777777777777777777")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).False()

		updated, already, err := repo.Request().AddResponder(ctx, req.ID, "777777777777777777")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).True()
		gt.Array(t, updated.ResponderIDs).Length(1)
	})

	t.Run("AddResponder preserves join order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewExternalRequest(types.NewRequestID(), newGuildID(),
			"111111111111111111", "alice", "eu-west", "Phishing wave", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		_, _, err = repo.Request().AddResponder(ctx, req.ID, "777777777777777777")
		gt.NoError(t, err).Required()
		updated, already, err := repo.Request().AddResponder(ctx, req.ID, "888888888888888888")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).False()
		gt.Value(t, updated.Status).Equal(types.RequestStatusResponding)
		gt.Array(t, updated.ResponderIDs).Length(2)
		gt.Value(t, updated.ResponderIDs[0]).Equal(types.UserID("777777777777777777"))
		gt.Value(t, updated.ResponderIDs[1]).Equal(types.UserID("888888888888888888"))
	})

	t.Run("AddResponder fails on a concluded request", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewInternalRequest(types.NewRequestID(),
			"111111111111111111", "alice", "build pipeline", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		_, err = repo.Request().Conclude(ctx, req.ID, "false positive",
			"999999999999999999", "carol", time.Now())
		gt.NoError(t, err).Required()

		_, _, err = repo.Request().AddResponder(ctx, req.ID, "777777777777777777")
		gt.Error(t, err).Is(repository.ErrAlreadyConcluded)
	})

	t.Run("AddResponder fails on an unknown request", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, _, err := repo.Request().AddResponder(ctx, types.NewRequestID(), "777777777777777777")
		gt.Error(t, err).Is(repository.ErrNotFound)
	})

	t.Run("Conclude populates conclusion fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewExternalRequest(types.NewRequestID(), newGuildID(),
			"111111111111111111", "alice", "eu-west", "Phishing wave", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		_, _, err = repo.Request().AddResponder(ctx, req.ID, "777777777777777777")
		gt.NoError(t, err).Required()

		at := time.Now()
		concluded, err := repo.Request().Conclude(ctx, req.ID, "credentials rotated",
			"999999999999999999", "carol", at)
		gt.NoError(t, err).Required()
		gt.Value(t, concluded.Status).Equal(types.RequestStatusConcluded)
		gt.Value(t, concluded.ConclusionReason).Equal("credentials rotated")
		gt.Value(t, concluded.ConcludedByID).Equal(types.UserID("999999999999999999"))
		gt.Value(t, concluded.ConcludedByName).Equal("carol")
		gt.Bool(t, concluded.ConcludedAt.IsZero()).False()
		// Responders survive conclusion
		gt.Array(t, concluded.ResponderIDs).Length(1)
	})

	t.Run("Conclude works on a request nobody responded to", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewInternalRequest(types.NewRequestID(),
			"111111111111111111", "alice", "build pipeline", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		concluded, err := repo.Request().Conclude(ctx, req.ID, "false positive",
			"999999999999999999", "carol", time.Now())
		gt.NoError(t, err).Required()
		gt.Value(t, concluded.Status).Equal(types.RequestStatusConcluded)
		gt.Array(t, concluded.ResponderIDs).Length(0)
	})

	t.Run("Conclude is terminal", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		req := model.NewInternalRequest(types.NewRequestID(),
			"111111111111111111", "alice", "build pipeline", "")
		_, err := repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()

		_, err = repo.Request().Conclude(ctx, req.ID, "original reason",
			"999999999999999999", "carol", time.Now())
		gt.NoError(t, err).Required()

		_, err = repo.Request().Conclude(ctx, req.ID, "second reason",
			"666666666666666666", "dave", time.Now())
		gt.Error(t, err).Is(repository.ErrAlreadyConcluded)

		got, err := repo.Request().Get(ctx, req.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ConclusionReason).Equal("original reason")
		gt.Value(t, got.ConcludedByName).Equal("carol")
	})

	t.Run("CountActiveByGuild excludes concluded requests", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		guildID := newGuildID()
		otherGuild := newGuildID()

		pending := model.NewExternalRequest(types.NewRequestID(), guildID,
			"111111111111111111", "alice", "eu-west", "Pending issue", "")
		_, err := repo.Request().Create(ctx, pending)
		gt.NoError(t, err).Required()

		responding := model.NewExternalRequest(types.NewRequestID(), guildID,
			"111111111111111111", "alice", "eu-west", "Responding issue", "")
		_, err = repo.Request().Create(ctx, responding)
		gt.NoError(t, err).Required()
		_, _, err = repo.Request().AddResponder(ctx, responding.ID, "777777777777777777")
		gt.NoError(t, err).Required()

		done := model.NewExternalRequest(types.NewRequestID(), guildID,
			"111111111111111111", "alice", "eu-west", "Closed issue", "")
		_, err = repo.Request().Create(ctx, done)
		gt.NoError(t, err).Required()
		_, err = repo.Request().Conclude(ctx, done.ID, "resolved",
			"999999999999999999", "carol", time.Now())
		gt.NoError(t, err).Required()

		elsewhere := model.NewExternalRequest(types.NewRequestID(), otherGuild,
			"111111111111111111", "alice", "eu-west", "Other guild issue", "")
		_, err = repo.Request().Create(ctx, elsewhere)
		gt.NoError(t, err).Required()

		count, err := repo.Request().CountActiveByGuild(ctx, guildID)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(2)
	})

	t.Run("List returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var ids []types.RequestID
		for i := 0; i < 3; i++ {
			req := model.NewInternalRequest(types.NewRequestID(),
				"111111111111111111", "alice", fmt.Sprintf("location %d", i), "")
			_, err := repo.Request().Create(ctx, req)
			gt.NoError(t, err).Required()
			ids = append(ids, req.ID)
			time.Sleep(10 * time.Millisecond)
		}

		items, err := repo.Request().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(3)
		gt.Value(t, items[0].ID).Equal(ids[2])
		gt.Value(t, items[1].ID).Equal(ids[1])
		gt.Value(t, items[2].ID).Equal(ids[0])
	})

	t.Run("List filters by status and guild", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		guildID := newGuildID()

		open := model.NewExternalRequest(types.NewRequestID(), guildID,
			"111111111111111111", "alice", "eu-west", "Open issue", "")
		_, err := repo.Request().Create(ctx, open)
		gt.NoError(t, err).Required()

		closed := model.NewExternalRequest(types.NewRequestID(), guildID,
			"111111111111111111", "alice", "eu-west", "Closed issue", "")
		_, err = repo.Request().Create(ctx, closed)
		gt.NoError(t, err).Required()
		_, err = repo.Request().Conclude(ctx, closed.ID, "resolved",
			"999999999999999999", "carol", time.Now())
		gt.NoError(t, err).Required()

		internal := model.NewInternalRequest(types.NewRequestID(),
			"111111111111111111", "alice", "build pipeline", "")
		_, err = repo.Request().Create(ctx, internal)
		gt.NoError(t, err).Required()

		pendingOnly, err := repo.Request().List(ctx,
			interfaces.WithStatus(types.RequestStatusPending))
		gt.NoError(t, err).Required()
		gt.Array(t, pendingOnly).Length(2)
		for _, item := range pendingOnly {
			gt.Value(t, item.Status).Equal(types.RequestStatusPending)
		}

		byGuild, err := repo.Request().List(ctx, interfaces.WithGuild(guildID))
		gt.NoError(t, err).Required()
		gt.Array(t, byGuild).Length(2)
		for _, item := range byGuild {
			gt.Value(t, item.ExternalGuildID).Equal(guildID)
		}
	})

	t.Run("List respects limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			req := model.NewInternalRequest(types.NewRequestID(),
				"111111111111111111", "alice", fmt.Sprintf("location %d", i), "")
			_, err := repo.Request().Create(ctx, req)
			gt.NoError(t, err).Required()
			time.Sleep(5 * time.Millisecond)
		}

		items, err := repo.Request().List(ctx, interfaces.WithLimit(2))
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2)
		gt.Value(t, items[0].Location).Equal("location 4")
		gt.Value(t, items[1].Location).Equal("location 3")
	})
}

func TestRequestRepository_Memory(t *testing.T) {
	runRequestRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestRequestRepository_Firestore(t *testing.T) {
	runRequestRepositoryTest(t, newFirestoreRepository)
}
