package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionClosed is returned when an event targets a closed session.
var ErrSessionClosed = errors.New("session closed")

// Catalog errors.
var (
	ErrEmptyCatalog       = errors.New("catalog has no categories")
	ErrMissingPlaceholder = errors.New("catalog must start with an empty-value placeholder")
	ErrDuplicateValue     = errors.New("duplicate value")
	ErrInvalidCatalog     = errors.New("invalid catalog")
)

// Controller errors.
var (
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownSubcategory  = errors.New("unknown subcategory")
	ErrInvalidTransition   = errors.New("event not allowed at current step")
	ErrSubmissionPrevented = errors.New("submission is not possible for this reason")
	ErrSubmissionPending   = errors.New("a submission is already in flight")
)

// ErrInvalidStatus is returned for a status outside idle/waiting/error/confirmed.
var ErrInvalidStatus = errors.New("invalid submission status")
