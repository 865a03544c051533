package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Configuration errors: recoverable by an administrator, surfaced to the
	// actor as a specific setup instruction
	ErrCustomerRoleNotConfigured = errors.New("customer role is not configured")
	ErrSecurityRoleNotConfigured = errors.New("security role is not configured")
	ErrAlertChannelNotConfigured = errors.New("alert channel is not configured")

	// Authorization errors: rejected before any mutation
	ErrCustomerRoleRequired  = errors.New("customer role is required")
	ErrSecurityRoleRequired  = errors.New("security role is required")
	ErrManagerRequired       = errors.New("manager permission is required")
	ErrAdminRequired         = errors.New("administrator permission is required")
	ErrBlacklistNotPermitted = errors.New("blacklist permission is required")
	ErrGuildNotRegistered    = errors.New("guild is not registered")
	ErrGuildBlacklisted      = errors.New("guild is blacklisted")
	ErrWrongChannel          = errors.New("command must be issued in the designated channel")
	ErrRoleNotAllowed        = errors.New("none of the allowed roles is held")

	// Not found errors
	ErrRequestNotFound = errors.New("request not found")

	// Status errors
	ErrRequestAlreadyConcluded = errors.New("request is already concluded")
)

// Context keys for error values
const (
	RequestIDKey = "request_id"
	GuildIDKey   = "guild_id"
)
