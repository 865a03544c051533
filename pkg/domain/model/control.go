package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

// ControlKind identifies the action behind an interactive control
type ControlKind string

const (
	ControlKindRespond  ControlKind = "respond"
	ControlKindConclude ControlKind = "conclude"
	// ControlKindReason is the conclude modal's custom ID
	ControlKindReason ControlKind = "reason"
)

// IsValid checks if the control kind is known
func (k ControlKind) IsValid() bool {
	switch k {
	case ControlKindRespond, ControlKindConclude, ControlKindReason:
		return true
	default:
		return false
	}
}

// ControlID is the parsed form of an interactive-control identifier.
// The wire encoding is underscore-delimited positional fields:
// "{kind}_{requestID}" for home-origin requests and
// "{kind}_{requestID}_{externalGuildID}" for cross-guild ones. Request IDs
// are UUIDs and guild IDs are numeric snowflakes, so neither can contain
// an underscore.
type ControlID struct {
	Kind            ControlKind
	RequestID       types.RequestID
	ExternalGuildID types.GuildID
}

// External reports whether the control targets a cross-guild request
func (c ControlID) External() bool {
	return c.ExternalGuildID != ""
}

// String encodes the control ID in its wire form
func (c ControlID) String() string {
	parts := []string{string(c.Kind), c.RequestID.String()}
	if c.ExternalGuildID != "" {
		parts = append(parts, c.ExternalGuildID.String())
	}
	return strings.Join(parts, "_")
}

// ErrMalformedControlID is returned for control identifiers that do not
// match the wire format. Malformed IDs are rejected, never guessed at.
var ErrMalformedControlID = goerr.New("malformed control ID")

// ParseControlID parses the wire form of a control identifier
func ParseControlID(s string) (ControlID, error) {
	fields := strings.Split(s, "_")
	if len(fields) != 2 && len(fields) != 3 {
		return ControlID{}, goerr.Wrap(ErrMalformedControlID, "unexpected field count",
			goerr.V("control_id", s), goerr.V("fields", len(fields)))
	}

	kind := ControlKind(fields[0])
	if !kind.IsValid() {
		return ControlID{}, goerr.Wrap(ErrMalformedControlID, "unknown control kind",
			goerr.V("control_id", s), goerr.V("kind", fields[0]))
	}

	requestID := types.RequestID(fields[1])
	if err := requestID.Validate(); err != nil {
		return ControlID{}, goerr.Wrap(ErrMalformedControlID, "invalid request ID",
			goerr.V("control_id", s))
	}

	parsed := ControlID{Kind: kind, RequestID: requestID}
	if len(fields) == 3 {
		guildID := types.GuildID(fields[2])
		if err := guildID.Validate(); err != nil {
			return ControlID{}, goerr.Wrap(ErrMalformedControlID, "invalid guild ID",
				goerr.V("control_id", s))
		}
		parsed.ExternalGuildID = guildID
	}

	return parsed, nil
}
