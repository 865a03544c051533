package memory

import (
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	guildConfig   *guildConfigRepository
	externalGuild *externalGuildRepository
	request       *requestRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		guildConfig:   newGuildConfigRepository(),
		externalGuild: newExternalGuildRepository(),
		request:       newRequestRepository(),
	}
}

func (m *Memory) GuildConfig() interfaces.GuildConfigRepository {
	return m.guildConfig
}

func (m *Memory) ExternalGuild() interfaces.ExternalGuildRepository {
	return m.externalGuild
}

func (m *Memory) Request() interfaces.RequestRepository {
	return m.request
}

func (m *Memory) Close() error {
	return nil
}
