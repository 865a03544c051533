package usecase

import (
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/types"
	discordsvc "github.com/secmon-lab/argos/pkg/service/discord"
)

type UseCases struct {
	repo        interfaces.Repository
	homeGuildID types.GuildID
	operators   []types.UserID
	discord     discordsvc.Service

	Config   *ConfigUseCase
	Registry *RegistryUseCase
	Request  *RequestUseCase
}

type Option func(*UseCases)

// WithHomeGuild sets the guild where security personnel operate. Request
// alerts are delivered against this guild's configuration.
func WithHomeGuild(guildID types.GuildID) Option {
	return func(uc *UseCases) {
		uc.homeGuildID = guildID
	}
}

// WithOperators sets override identities that pass manager and blacklist
// permission checks regardless of role configuration
func WithOperators(userIDs ...types.UserID) Option {
	return func(uc *UseCases) {
		uc.operators = append(uc.operators, userIDs...)
	}
}

// WithDiscord sets the Discord service used for rendering views
func WithDiscord(svc discordsvc.Service) Option {
	return func(uc *UseCases) {
		uc.discord = svc
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Config = NewConfigUseCase(repo, uc.operators)
	uc.Registry = NewRegistryUseCase(repo, uc.Config, uc.discord)
	uc.Request = NewRequestUseCase(repo, uc.Config, uc.discord, uc.homeGuildID)

	return uc
}

// HomeGuildID returns the configured home guild
func (uc *UseCases) HomeGuildID() types.GuildID {
	return uc.homeGuildID
}
