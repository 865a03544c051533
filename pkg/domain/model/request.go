package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

// MessageRef is an opaque reference to one rendered view of a request
type MessageRef struct {
	ChannelID types.ChannelID
	MessageID types.MessageID
}

// IsZero reports whether the reference points at no message
func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" && r.MessageID == ""
}

// Request represents a single security-assistance filing, tracked from
// creation through conclusion. The ledger entry is the source of truth;
// the rendered views referenced by OriginMessage/AlertMessage are advisory
// projections that may transiently lag.
type Request struct {
	ID            types.RequestID
	External      bool
	RequesterID   types.UserID
	RequesterName string
	Location      string
	Details       string
	Contact       string

	// ExternalGuildID and OriginMessage are set iff External
	ExternalGuildID types.GuildID
	OriginMessage   MessageRef
	AlertMessage    MessageRef

	Status       types.RequestStatus
	ResponderIDs []types.UserID

	ConclusionReason string
	ConcludedByID    types.UserID
	ConcludedByName  string
	ConcludedAt      time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewInternalRequest builds a pending request filed from the home guild.
// Internal requests have a single rendered view (the alert message).
func NewInternalRequest(id types.RequestID, requesterID types.UserID, requesterName, location, details string) *Request {
	return &Request{
		ID:            id,
		External:      false,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Location:      location,
		Details:       details,
		Status:        types.RequestStatusPending,
	}
}

// NewExternalRequest builds a pending request filed from a customer guild
func NewExternalRequest(id types.RequestID, guildID types.GuildID, requesterID types.UserID, requesterName, location, details, contact string) *Request {
	return &Request{
		ID:              id,
		External:        true,
		ExternalGuildID: guildID,
		RequesterID:     requesterID,
		RequesterName:   requesterName,
		Location:        location,
		Details:         details,
		Contact:         contact,
		Status:          types.RequestStatusPending,
	}
}

// Validate checks structural invariants of the request
func (r *Request) Validate() error {
	if err := r.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid request ID")
	}
	if err := r.RequesterID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid requester ID")
	}
	if r.Location == "" {
		return goerr.New("location is required", goerr.V("request_id", r.ID))
	}
	if !r.Status.Normalize().IsValid() {
		return goerr.New("invalid request status",
			goerr.V("request_id", r.ID), goerr.V("status", r.Status))
	}
	if r.External {
		if err := r.ExternalGuildID.Validate(); err != nil {
			return goerr.Wrap(err, "external request requires a guild ID",
				goerr.V("request_id", r.ID))
		}
		if r.Details == "" {
			return goerr.New("details are required for external requests",
				goerr.V("request_id", r.ID))
		}
	} else {
		if r.ExternalGuildID != "" || !r.OriginMessage.IsZero() {
			return goerr.New("internal request must not carry external references",
				goerr.V("request_id", r.ID))
		}
	}
	if r.Status == types.RequestStatusResponding && len(r.ResponderIDs) == 0 {
		return goerr.New("responding request must have responders",
			goerr.V("request_id", r.ID))
	}
	if r.Status == types.RequestStatusConcluded {
		if r.ConclusionReason == "" || r.ConcludedByID == "" || r.ConcludedAt.IsZero() {
			return goerr.New("concluded request must carry conclusion fields",
				goerr.V("request_id", r.ID))
		}
	}
	return nil
}

// HasResponder reports whether the user is already on the responder list
func (r *Request) HasResponder(userID types.UserID) bool {
	return slices.Contains(r.ResponderIDs, userID)
}

// Concluded reports whether the request reached its terminal state
func (r *Request) Concluded() bool {
	return r.Status == types.RequestStatusConcluded
}
