package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
)

type Firestore struct {
	client        *firestore.Client
	guildConfig   *guildConfigRepository
	externalGuild *externalGuildRepository
	request       *requestRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.guildConfig.collectionPrefix = prefix
		f.externalGuild.collectionPrefix = prefix
		f.request.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:        client,
		guildConfig:   newGuildConfigRepository(client),
		externalGuild: newExternalGuildRepository(client),
		request:       newRequestRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) GuildConfig() interfaces.GuildConfigRepository {
	return f.guildConfig
}

func (f *Firestore) ExternalGuild() interfaces.ExternalGuildRepository {
	return f.externalGuild
}

func (f *Firestore) Request() interfaces.RequestRepository {
	return f.request
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
