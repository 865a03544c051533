package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// externalGuildDoc is the Firestore document representation of
// model.ExternalGuild. AllowedRoleIDs is a native array field; insertion
// order is the array order.
type externalGuildDoc struct {
	GuildID         string    `firestore:"GuildID"`
	Name            string    `firestore:"Name"`
	ChannelID       string    `firestore:"ChannelID"`
	Active          bool      `firestore:"Active"`
	Blacklisted     bool      `firestore:"Blacklisted"`
	BlacklistReason string    `firestore:"BlacklistReason"`
	LastAccessedAt  time.Time `firestore:"LastAccessedAt"`
	AllowedRoleIDs  []string  `firestore:"AllowedRoleIDs"`
	CreatedAt       time.Time `firestore:"CreatedAt"`
	UpdatedAt       time.Time `firestore:"UpdatedAt"`
}

func toExternalGuildDoc(g *model.ExternalGuild) *externalGuildDoc {
	roleIDs := make([]string, len(g.AllowedRoleIDs))
	for i, id := range g.AllowedRoleIDs {
		roleIDs[i] = id.String()
	}
	return &externalGuildDoc{
		GuildID:         g.GuildID.String(),
		Name:            g.Name,
		ChannelID:       g.ChannelID.String(),
		Active:          g.Active,
		Blacklisted:     g.Blacklisted,
		BlacklistReason: g.BlacklistReason,
		LastAccessedAt:  g.LastAccessedAt,
		AllowedRoleIDs:  roleIDs,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func fromExternalGuildDoc(d *externalGuildDoc) *model.ExternalGuild {
	roleIDs := make([]types.RoleID, len(d.AllowedRoleIDs))
	for i, id := range d.AllowedRoleIDs {
		roleIDs[i] = types.RoleID(id)
	}
	return &model.ExternalGuild{
		GuildID:         types.GuildID(d.GuildID),
		Name:            d.Name,
		ChannelID:       types.ChannelID(d.ChannelID),
		Active:          d.Active,
		Blacklisted:     d.Blacklisted,
		BlacklistReason: d.BlacklistReason,
		LastAccessedAt:  d.LastAccessedAt,
		AllowedRoleIDs:  roleIDs,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func docToExternalGuild(doc *firestore.DocumentSnapshot) (*model.ExternalGuild, error) {
	var d externalGuildDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromExternalGuildDoc(&d), nil
}

type externalGuildRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newExternalGuildRepository(client *firestore.Client) *externalGuildRepository {
	return &externalGuildRepository{
		client: client,
	}
}

func (r *externalGuildRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_external_guilds"
	}
	return "external_guilds"
}

func (r *externalGuildRepository) Get(ctx context.Context, guildID types.GuildID) (*model.ExternalGuild, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(guildID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "external guild not found", goerr.V("guild_id", guildID))
		}
		return nil, goerr.Wrap(err, "failed to get external guild", goerr.V("guild_id", guildID))
	}

	guild, err := docToExternalGuild(docSnap)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode external guild", goerr.V("guild_id", guildID))
	}

	return guild, nil
}

func (r *externalGuildRepository) Put(ctx context.Context, guild *model.ExternalGuild) (*model.ExternalGuild, error) {
	now := time.Now().UTC()
	stored := *guild
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	docRef := r.client.Collection(r.collection()).Doc(stored.GuildID.String())
	if _, err := docRef.Set(ctx, toExternalGuildDoc(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to put external guild", goerr.V("guild_id", stored.GuildID))
	}

	return &stored, nil
}

func (r *externalGuildRepository) Touch(ctx context.Context, guildID types.GuildID, now time.Time) (bool, error) {
	docRef := r.client.Collection(r.collection()).Doc(guildID.String())

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "LastAccessedAt", Value: now.UTC()},
		{Path: "Active", Value: true},
		{Path: "UpdatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		// Update fails on a missing document; a touch never creates one
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to touch external guild", goerr.V("guild_id", guildID))
	}

	return true, nil
}

func (r *externalGuildRepository) List(ctx context.Context) ([]*model.ExternalGuild, error) {
	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	guilds := make([]*model.ExternalGuild, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate external guilds")
		}

		guild, err := docToExternalGuild(docSnap)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode external guild", goerr.V("doc_id", docSnap.Ref.ID))
		}

		guilds = append(guilds, guild)
	}

	return guilds, nil
}

func (r *externalGuildRepository) SweepInactive(ctx context.Context, deadline time.Time) (*model.SweepResult, error) {
	// Demotion targets: active registrations idle since before the deadline.
	// Requires the Active+LastAccessedAt composite index.
	iter := r.client.Collection(r.collection()).
		Where("Active", "==", true).
		Where("LastAccessedAt", "<", deadline.UTC()).
		Documents(ctx)
	defer iter.Stop()

	result := &model.SweepResult{}
	now := time.Now().UTC()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sweep candidates")
		}

		if _, err := docSnap.Ref.Update(ctx, []firestore.Update{
			{Path: "Active", Value: false},
			{Path: "UpdatedAt", Value: now},
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to demote external guild", goerr.V("doc_id", docSnap.Ref.ID))
		}

		result.Demoted = append(result.Demoted, types.GuildID(docSnap.Ref.ID))
	}

	guilds, err := r.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count registrations after sweep")
	}
	for _, g := range guilds {
		if g.Active {
			result.Active++
		} else {
			result.Inactive++
		}
	}

	return result, nil
}
