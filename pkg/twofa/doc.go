// Package twofa orchestrates the two-factor authentication credential
// lifecycle for a content-management application: enrollment with a
// provisioning URI and QR code, confirmation with recovery-code issuance,
// disable via live OTP or recovery code, and recovery-set rotation.
//
// # State machine
//
//	Disabled -> PendingSetup -> Enabled -> Disabled
//
// Setup moves an account into PendingSetup by generating a fresh secret and
// parking it in an expiring cache slot (unconfirmed secrets die after a
// bounded TTL). Confirm verifies a code against the pending secret and, on
// success, persists the credential through the external CredentialStore
// collaborator, issues single-use recovery codes, and reports the
// transition through the Notifier collaborator. Disable erases the secret
// and the whole recovery set together; there is no partially-disabled state.
//
// Every state-changing operation first passes a fixed-window rate limit
// under its own namespace, so a rejected attempt mutates nothing.
//
// # Error taxonomy
//
// Callers branch on sentinels with errors.Is: ErrInvalidCode (malformed
// input, rejected before verification), ErrAuthFailed (verification failed,
// counted against the quota), ErrStateConflict with a specific cause
// (ErrAlreadyEnabled, ErrNoPendingSetup, ErrNotEnabled), ErrRateLimited
// (carried by RateLimitedError with a retry-after hint), and
// ErrStoreUnavailable (collaborator failure; checks fail closed).
//
// # Deployment
//
// Pending secrets and the default rate-limit counters are process-local.
// Running multiple instances requires WithRateLimitStore(RedisStore) and a
// shared pending-secret store for consistent behavior across instances.
package twofa
