package twofa

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCredentialStoreRequired indicates the service was constructed
	// without a credential store.
	ErrCredentialStoreRequired = errors.New("credential store is required")

	// ErrAccountRequired indicates a missing account identifier.
	ErrAccountRequired = errors.New("account identifier is required")

	// ErrInvalidCode indicates a malformed code: wrong length or characters.
	// Reported before any verification work is done; no state changes.
	ErrInvalidCode = errors.New("invalid code format")

	// ErrAuthFailed indicates the code failed verification against the
	// pending or live secret, or an unknown/consumed recovery code.
	// Counts toward the rate-limit quota; no state changes.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrStateConflict indicates the operation is not permitted from the
	// account's current 2FA state. Joined with one of the specific
	// sentinels below, so both match with errors.Is.
	ErrStateConflict = errors.New("operation not permitted in current state")

	// ErrAlreadyEnabled: setup requested while 2FA is enabled.
	ErrAlreadyEnabled = errors.New("two-factor authentication already enabled")

	// ErrNoPendingSetup: confirm called without a pending setup (never
	// requested, or the pending secret expired).
	ErrNoPendingSetup = errors.New("no pending two-factor setup")

	// ErrNotEnabled: disable or rotate called while 2FA is not enabled.
	ErrNotEnabled = errors.New("two-factor authentication not enabled")

	// ErrRateLimited is the sentinel matched by RateLimitedError.
	ErrRateLimited = errors.New("too many requests")

	// ErrCredentialNotFound is returned by CredentialStore implementations
	// when no credential is persisted for the account.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrStoreUnavailable indicates a collaborator (credential store or rate
	// limit backend) failed. Security checks fail closed on this error.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// RateLimitedError reports quota exhaustion with a retry-after hint.
// It matches ErrRateLimited under errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
