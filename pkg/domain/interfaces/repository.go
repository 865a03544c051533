package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	GuildConfig() GuildConfigRepository
	ExternalGuild() ExternalGuildRepository
	Request() RequestRepository

	// Close releases the underlying client resources
	Close() error
}
