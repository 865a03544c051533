package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// guildConfigDoc is the Firestore document representation of
// model.GuildConfig
type guildConfigDoc struct {
	GuildID         string    `firestore:"GuildID"`
	ManagerRoleID   string    `firestore:"ManagerRoleID"`
	CustomerRoleID  string    `firestore:"CustomerRoleID"`
	SecurityRoleID  string    `firestore:"SecurityRoleID"`
	AlertChannelID  string    `firestore:"AlertChannelID"`
	BlacklistRoleID string    `firestore:"BlacklistRoleID"`
	CreatedAt       time.Time `firestore:"CreatedAt"`
	UpdatedAt       time.Time `firestore:"UpdatedAt"`
}

func toGuildConfigDoc(c *model.GuildConfig) *guildConfigDoc {
	return &guildConfigDoc{
		GuildID:         c.GuildID.String(),
		ManagerRoleID:   c.ManagerRoleID.String(),
		CustomerRoleID:  c.CustomerRoleID.String(),
		SecurityRoleID:  c.SecurityRoleID.String(),
		AlertChannelID:  c.AlertChannelID.String(),
		BlacklistRoleID: c.BlacklistRoleID.String(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func fromGuildConfigDoc(d *guildConfigDoc) *model.GuildConfig {
	return &model.GuildConfig{
		GuildID:         types.GuildID(d.GuildID),
		ManagerRoleID:   types.RoleID(d.ManagerRoleID),
		CustomerRoleID:  types.RoleID(d.CustomerRoleID),
		SecurityRoleID:  types.RoleID(d.SecurityRoleID),
		AlertChannelID:  types.ChannelID(d.AlertChannelID),
		BlacklistRoleID: types.RoleID(d.BlacklistRoleID),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func docToGuildConfig(doc *firestore.DocumentSnapshot) (*model.GuildConfig, error) {
	var d guildConfigDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromGuildConfigDoc(&d), nil
}

type guildConfigRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newGuildConfigRepository(client *firestore.Client) *guildConfigRepository {
	return &guildConfigRepository{
		client: client,
	}
}

func (r *guildConfigRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_guild_configs"
	}
	return "guild_configs"
}

func (r *guildConfigRepository) Get(ctx context.Context, guildID types.GuildID) (*model.GuildConfig, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(guildID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "guild config not found", goerr.V("guild_id", guildID))
		}
		return nil, goerr.Wrap(err, "failed to get guild config", goerr.V("guild_id", guildID))
	}

	cfg, err := docToGuildConfig(docSnap)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode guild config", goerr.V("guild_id", guildID))
	}

	return cfg, nil
}

// Upsert runs as a transaction so concurrent patches merge instead of
// clobbering each other.
func (r *guildConfigRepository) Upsert(ctx context.Context, guildID types.GuildID, patch *model.GuildConfigPatch) (*model.GuildConfig, error) {
	docRef := r.client.Collection(r.collection()).Doc(guildID.String())

	var result *model.GuildConfig
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()

		cfg := &model.GuildConfig{
			GuildID:   guildID,
			CreatedAt: now,
		}

		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get guild config")
			}
		} else {
			cfg, err = docToGuildConfig(doc)
			if err != nil {
				return goerr.Wrap(err, "failed to decode guild config")
			}
		}

		patch.Apply(cfg)
		cfg.UpdatedAt = now

		result = cfg
		return tx.Set(docRef, toGuildConfigDoc(cfg))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert guild config", goerr.V("guild_id", guildID))
	}

	return result, nil
}
