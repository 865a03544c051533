package types

import "fmt"

// RequestStatus represents the status of a security request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusResponding RequestStatus = "responding"
	RequestStatusConcluded  RequestStatus = "concluded"
)

// AllRequestStatuses returns all valid request statuses
func AllRequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusPending,
		RequestStatusResponding,
		RequestStatusConcluded,
	}
}

// Normalize returns the status, treating empty as RequestStatusPending
// so records written before the status field existed stay readable.
func (s RequestStatus) Normalize() RequestStatus {
	if s == "" {
		return RequestStatusPending
	}
	return s
}

// IsValid checks if the request status is valid
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending,
		RequestStatusResponding,
		RequestStatusConcluded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusConcluded
}

// CanTransitionTo reports whether moving to next is a legal forward
// transition. The lifecycle is strictly monotonic: pending → responding →
// concluded, with pending → concluded also permitted (conclusion with no
// responders).
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return next == RequestStatusResponding || next == RequestStatusConcluded
	case RequestStatusResponding:
		return next == RequestStatusConcluded
	default:
		return false
	}
}

// String returns the string representation of the request status
func (s RequestStatus) String() string {
	return string(s)
}

// Emoji returns a status indicator for message headers
func (s RequestStatus) Emoji() string {
	switch s {
	case RequestStatusPending:
		return "🔴"
	case RequestStatusResponding:
		return "🔵"
	case RequestStatusConcluded:
		return "🟢"
	default:
		return "⚪"
	}
}

// ParseRequestStatus parses a string into a RequestStatus
func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid request status: %s", s)
	}
	return status, nil
}
