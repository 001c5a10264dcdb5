package domain

import (
	"errors"
	"fmt"
)

// Sentinel error categories for the domain layer. Specific errors below wrap
// exactly one category so callers can branch with errors.Is on either level.
var (
	ErrValidation   = errors.New("domain: invalid input")
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")

	// ErrUnavailable reports an infrastructure failure of the primary store.
	// Unless the error is also ErrCommitUnknown, the mutation it was attached
	// to is known not to be committed.
	ErrUnavailable = errors.New("domain: store unavailable")

	// ErrCommitUnknown reports a commit whose acknowledgement was lost. The
	// mutation may or may not be durable.
	ErrCommitUnknown = fmt.Errorf("%w: commit outcome unknown", ErrUnavailable)
)

// Validation errors. Always raised before any store mutation.
var (
	ErrInvalidIdentifier  = fmt.Errorf("%w: invalid national identifier", ErrValidation)
	ErrInvalidValuation   = fmt.Errorf("%w: declared value must be positive", ErrValidation)
	ErrInvalidVehicleYear = fmt.Errorf("%w: vehicle model year out of range", ErrValidation)
	ErrInvalidCoverage    = fmt.Errorf("%w: incomplete coverage data", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date, use YYYY-MM-DD or DD/MM/YYYY", ErrValidation)
	ErrInvalidEmail       = fmt.Errorf("%w: email must contain @", ErrValidation)
	ErrInvalidInput       = fmt.Errorf("%w: missing or malformed field", ErrValidation)
)

// Conflict errors. Store-visible invariant violations; the transaction is rolled back.
var (
	ErrDuplicateIdentifier = fmt.Errorf("%w: national identifier already registered", ErrConflict)
	ErrAlreadyCancelled    = fmt.Errorf("%w: policy is already cancelled", ErrConflict)
	ErrPolicyNotActive     = fmt.Errorf("%w: policy is not active", ErrConflict)
	ErrPolicyNumberTaken   = fmt.Errorf("%w: policy number already in use", ErrConflict)
	ErrUsernameTaken       = fmt.Errorf("%w: username already in use", ErrConflict)
)

// Lookup errors.
var (
	ErrClientNotFound = fmt.Errorf("%w: client not found", ErrNotFound)
	ErrPolicyNotFound = fmt.Errorf("%w: policy not found", ErrNotFound)
	ErrClaimNotFound  = fmt.Errorf("%w: claim not found", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("%w: user not found", ErrNotFound)
)

// businessErrors lists every error whose text is safe to show to a caller.
var businessErrors = []error{
	ErrInvalidIdentifier, ErrInvalidValuation, ErrInvalidVehicleYear, ErrInvalidCoverage,
	ErrInvalidDate, ErrInvalidEmail, ErrInvalidInput,
	ErrDuplicateIdentifier, ErrAlreadyCancelled, ErrPolicyNotActive, ErrPolicyNumberTaken, ErrUsernameTaken,
	ErrClientNotFound, ErrPolicyNotFound, ErrClaimNotFound, ErrUserNotFound,
}

// PublicMessage returns a human-readable message for err that never leaks
// store-internal detail. Infrastructure errors collapse to a generic text.
func PublicMessage(err error) string {
	for _, be := range businessErrors {
		if errors.Is(err, be) {
			return trimCategory(be)
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return "authentication required"
	case errors.Is(err, ErrForbidden):
		return "operation not permitted for this role"
	case errors.Is(err, ErrValidation):
		return "invalid input"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrCommitUnknown):
		return "internal error: the operation may have been applied, check before retrying"
	case errors.Is(err, ErrUnavailable):
		return "internal error: the operation was not applied"
	default:
		return "internal error"
	}
}

// trimCategory drops the "domain: <category>: " prefix from a specific error.
func trimCategory(err error) string {
	msg := err.Error()
	for _, cat := range []error{ErrValidation, ErrConflict, ErrNotFound} {
		prefix := cat.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
