package session

import "errors"

var (
	ErrNotActive       = errors.New("session: no handover is active")
	ErrAlreadyActive   = errors.New("session: a handover is already active")
	ErrMissingField    = errors.New("session: unit or responsible party not recognized")
	ErrNotFound        = errors.New("session: entry not found")
	ErrMalformedMarker = errors.New("session: confirmation marker is malformed")
	ErrNotRecognized   = errors.New("session: message is not a confirmation")
	ErrStoreFailure    = errors.New("session: store operation failed")
)
