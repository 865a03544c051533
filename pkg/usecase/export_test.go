package usecase

// BuildAlertMessage is exported for testing
var BuildAlertMessage = buildAlertMessage

// BuildOriginMessage is exported for testing
var BuildOriginMessage = buildOriginMessage
