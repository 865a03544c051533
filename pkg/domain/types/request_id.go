package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// RequestID represents a unique identifier for a security request.
// The ID is generated at the platform boundary and stays stable across
// every rendered view of the request.
type RequestID string

// NewRequestID generates a new random RequestID
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

// Validate checks if the RequestID is valid
func (r RequestID) Validate() error {
	if r == "" {
		return goerr.New("request ID cannot be empty")
	}
	if _, err := uuid.Parse(string(r)); err != nil {
		return goerr.New("request ID must be a UUID", goerr.V("id", r))
	}
	return nil
}

// String returns the string representation of RequestID
func (r RequestID) String() string {
	return string(r)
}
