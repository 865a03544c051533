package discord

// Test-only exports
const (
	ModalFileInternal = modalFileInternal
	ModalFileExternal = modalFileExternal
	FieldLocation     = fieldLocation
	FieldDetails      = fieldDetails
	FieldContact      = fieldContact
	FieldReason       = fieldReason
)

var (
	Dispatch         = (*Handler).dispatch
	RejectionMessage = rejectionMessage
)
