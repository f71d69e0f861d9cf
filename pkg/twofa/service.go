package twofa

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/guardkit/pkg/cache"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/qrcode"
	"github.com/dmitrymomot/guardkit/pkg/ratelimit"
	"github.com/dmitrymomot/guardkit/pkg/totp"
)

// Rate-limit namespaces, one quota per operation.
const (
	nsSetup   = "twofa:setup"
	nsConfirm = "twofa:confirm"
	nsDisable = "twofa:disable"
	nsRotate  = "twofa:rotate"
)

const pendingKeyPrefix = "twofa:pending:"

// recoveryCodeShape matches the 16-hex-char format produced by
// totp.GenerateRecoveryCodes, after uppercasing.
var recoveryCodeShape = regexp.MustCompile(`^[0-9A-F]{16}$`)

// Service orchestrates the two-factor credential lifecycle:
// Disabled -> PendingSetup -> Enabled -> Disabled. Pending secrets live in an
// expiring in-process cache; confirmed credentials go to the injected
// CredentialStore. Every state-changing operation passes a fixed-window rate
// limit before touching any state.
type Service struct {
	cfg      Config
	store    CredentialStore
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	pending *cache.TTLCache[string]
	rlStore ratelimit.Store

	setupLimiter   ratelimit.Limiter
	confirmLimiter ratelimit.Limiter
	disableLimiter ratelimit.Limiter
	rotateLimiter  ratelimit.Limiter

	encryptionKey []byte
	ownedClose    []func()
}

// Status is the account's current position in the lifecycle.
type Status string

const (
	StatusDisabled     Status = "disabled"
	StatusPendingSetup Status = "pending_setup"
	StatusEnabled      Status = "enabled"
)

// SetupResponse is returned from Setup. Secret is shown to the caller
// exactly once and never again; QRCode is a data:image/png;base64 URI
// rendering of the provisioning URI.
type SetupResponse struct {
	Secret string
	URI    string
	QRCode string
}

// ConfirmResponse carries the plaintext recovery codes issued on a
// successful enable. This is the only time they are visible; only hashes
// are persisted.
type ConfirmResponse struct {
	RecoveryCodes []string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier sets the lifecycle event notifier.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger used for auth failures and notifier errors.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the time source for TOTP validation, event timestamps,
// and (unless overridden) the default pending cache and rate-limit store.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPendingCache supplies the cache holding unconfirmed secrets. The
// caller keeps ownership and is responsible for closing it.
func WithPendingCache(c *cache.TTLCache[string]) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.pending = c
		}
	}
}

// WithRateLimitStore supplies the counter backend for all operation quotas.
// Pass a RedisStore here to keep limits consistent across instances; the
// default in-memory store is per-process only.
func WithRateLimitStore(store ratelimit.Store) ServiceOption {
	return func(s *Service) {
		if store != nil {
			s.rlStore = store
		}
	}
}

// NewService creates the lifecycle service. The credential store is the only
// mandatory collaborator; everything else defaults to process-local
// implementations.
func NewService(cfg Config, store CredentialStore, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrCredentialStoreRequired
	}
	cfg = cfg.withDefaults()
	if cfg.Issuer == "" {
		return nil, totp.ErrMissingIssuer
	}

	s := &Service{
		cfg:      cfg,
		store:    store,
		notifier: NoOpNotifier{},
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.EncryptionKey != "" {
		key, err := totp.ParseEncryptionKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		s.encryptionKey = key
	}

	if s.pending == nil {
		pending := cache.New[string](cache.WithClock(s.now))
		s.pending = pending
		s.ownedClose = append(s.ownedClose, pending.Close)
	}
	if s.rlStore == nil {
		ms := ratelimit.NewMemoryStore(cache.WithClock(s.now))
		s.rlStore = ms
		s.ownedClose = append(s.ownedClose, func() { _ = ms.Close() })
	}

	var err error
	if s.setupLimiter, err = ratelimit.NewFixedWindow(s.rlStore, cfg.SetupLimit, cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if s.confirmLimiter, err = ratelimit.NewFixedWindow(s.rlStore, cfg.ConfirmLimit, cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if s.disableLimiter, err = ratelimit.NewFixedWindow(s.rlStore, cfg.DisableLimit, cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if s.rotateLimiter, err = ratelimit.NewFixedWindow(s.rlStore, cfg.DisableLimit, cfg.RateLimitWindow); err != nil {
		return nil, err
	}

	return s, nil
}

// Close releases resources the service created itself (default pending cache
// and rate-limit store). Injected collaborators are left alone.
func (s *Service) Close() {
	for _, fn := range s.ownedClose {
		fn()
	}
}

// Setup starts (or restarts) enrollment for an account. Allowed from
// Disabled or PendingSetup; requesting again simply overwrites the pending
// secret, it does not error. The persisted credential of an Enabled account
// is never touched from here, so Setup while Enabled is a state conflict.
func (s *Service) Setup(ctx context.Context, accountID, accountName string) (*SetupResponse, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	if err := s.allow(ctx, s.setupLimiter, nsSetup, accountID); err != nil {
		return nil, err
	}

	switch _, err := s.store.Get(ctx, accountID); {
	case err == nil:
		return nil, errors.Join(ErrStateConflict, ErrAlreadyEnabled)
	case !errors.Is(err, ErrCredentialNotFound):
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}

	uri, err := totp.GetTOTPURI(totp.URIParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      s.cfg.Issuer,
	})
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.DataURI(uri, s.cfg.QRCodeSize)
	if err != nil {
		return nil, err
	}

	s.pending.Set(pendingKeyPrefix+accountID, secret, s.cfg.PendingSetupTTL)

	return &SetupResponse{
		Secret: secret,
		URI:    uri,
		QRCode: qr,
	}, nil
}

// Confirm completes enrollment by checking a code from the authenticator app
// against the pending secret. On success the credential is persisted, the
// recovery-code set is issued, the pending slot is cleared, and the account
// transitions to Enabled. A failed attempt leaves the pending secret exactly
// as it was, so retries verify against the same secret.
func (s *Service) Confirm(ctx context.Context, accountID, code string) (*ConfirmResponse, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	if err := s.allow(ctx, s.confirmLimiter, nsConfirm, accountID); err != nil {
		return nil, err
	}

	secret, ok := s.pending.Get(pendingKeyPrefix + accountID)
	if !ok {
		return nil, errors.Join(ErrStateConflict, ErrNoPendingSetup)
	}

	valid, err := totp.ValidateTOTPAt(secret, code, s.now(), totp.DefaultWindow)
	if err != nil {
		if errors.Is(err, totp.ErrInvalidCode) {
			return nil, errors.Join(ErrInvalidCode, err)
		}
		return nil, err
	}
	if !valid {
		s.log.LogAttrs(ctx, slog.LevelWarn, "Two-factor setup confirmation failed",
			logger.AccountID(accountID),
			logger.Namespace(nsConfirm),
		)
		return nil, ErrAuthFailed
	}

	codes, err := totp.GenerateRecoveryCodes(s.cfg.RecoveryCodeCount)
	if err != nil {
		return nil, err
	}

	stored, err := s.sealSecret(secret)
	if err != nil {
		return nil, err
	}

	// Persist secret and recovery hashes together; the pending slot survives
	// a store failure so the user can retry the same enrollment.
	if err := s.store.Save(ctx, accountID, Credential{
		Secret:        stored,
		RecoveryCodes: hashCodes(codes),
	}); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.pending.Delete(pendingKeyPrefix + accountID)
	s.notify(ctx, accountID, EventEnabled)

	return &ConfirmResponse{RecoveryCodes: codes}, nil
}

// Disable turns 2FA off for an Enabled account. The code may be a live OTP
// or one of the unconsumed recovery codes. On success the secret and the
// whole recovery set are erased together; on failure nothing changes.
func (s *Service) Disable(ctx context.Context, accountID, code string) error {
	if accountID == "" {
		return ErrAccountRequired
	}
	if err := s.allow(ctx, s.disableLimiter, nsDisable, accountID); err != nil {
		return err
	}

	cred, err := s.store.Get(ctx, accountID)
	if errors.Is(err, ErrCredentialNotFound) {
		return errors.Join(ErrStateConflict, ErrNotEnabled)
	}
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	ok, err := s.checkDisableCode(cred, code)
	if err != nil {
		return err
	}
	if !ok {
		s.log.LogAttrs(ctx, slog.LevelWarn, "Two-factor disable failed",
			logger.AccountID(accountID),
			logger.Namespace(nsDisable),
		)
		return ErrAuthFailed
	}

	if err := s.store.Delete(ctx, accountID); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	s.pending.Delete(pendingKeyPrefix + accountID)
	s.notify(ctx, accountID, EventDisabled)

	return nil
}

// RotateRecoveryCodes replaces the whole recovery set for an Enabled
// account. Partial regeneration is deliberately not supported: a valid live
// OTP (recovery codes are not accepted here) buys a complete fresh set and
// invalidates every previous code.
func (s *Service) RotateRecoveryCodes(ctx context.Context, accountID, code string) ([]string, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	if err := s.allow(ctx, s.rotateLimiter, nsRotate, accountID); err != nil {
		return nil, err
	}

	cred, err := s.store.Get(ctx, accountID)
	if errors.Is(err, ErrCredentialNotFound) {
		return nil, errors.Join(ErrStateConflict, ErrNotEnabled)
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	secret, err := s.openSecret(cred.Secret)
	if err != nil {
		return nil, err
	}

	valid, err := totp.ValidateTOTPAt(secret, code, s.now(), totp.DefaultWindow)
	if err != nil {
		if errors.Is(err, totp.ErrInvalidCode) {
			return nil, errors.Join(ErrInvalidCode, err)
		}
		return nil, err
	}
	if !valid {
		return nil, ErrAuthFailed
	}

	codes, err := totp.GenerateRecoveryCodes(s.cfg.RecoveryCodeCount)
	if err != nil {
		return nil, err
	}

	cred.RecoveryCodes = hashCodes(codes)
	if err := s.store.Save(ctx, accountID, cred); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	s.notify(ctx, accountID, EventRecoveryCodesRotated)

	return codes, nil
}

// Status reports the account's position in the lifecycle.
func (s *Service) Status(ctx context.Context, accountID string) (Status, error) {
	if accountID == "" {
		return "", ErrAccountRequired
	}

	switch _, err := s.store.Get(ctx, accountID); {
	case err == nil:
		return StatusEnabled, nil
	case !errors.Is(err, ErrCredentialNotFound):
		return "", errors.Join(ErrStoreUnavailable, err)
	}

	if _, ok := s.pending.Get(pendingKeyPrefix + accountID); ok {
		return StatusPendingSetup, nil
	}
	return StatusDisabled, nil
}

// checkDisableCode accepts either a live OTP or an unconsumed recovery code.
// Input that matches neither shape is a validation error, reported without
// touching any key material.
func (s *Service) checkDisableCode(cred Credential, code string) (bool, error) {
	code = strings.TrimSpace(code)

	if normalized := strings.ToUpper(code); recoveryCodeShape.MatchString(normalized) {
		for _, hash := range cred.RecoveryCodes {
			if totp.VerifyRecoveryCode(normalized, hash) {
				return true, nil
			}
		}
		return false, nil
	}

	// Not a recovery code, so it must look like an OTP before any key
	// material is decrypted or hashed.
	if !otpShape(code) {
		return false, errors.Join(ErrInvalidCode, totp.ErrInvalidCode)
	}

	secret, err := s.openSecret(cred.Secret)
	if err != nil {
		return false, err
	}

	valid, err := totp.ValidateTOTPAt(secret, code, s.now(), totp.DefaultWindow)
	if err != nil {
		if errors.Is(err, totp.ErrInvalidCode) {
			return false, errors.Join(ErrInvalidCode, err)
		}
		return false, err
	}
	return valid, nil
}

// allow consults the operation's rate limiter before any state is read or
// written. A limiter backend failure fails closed.
func (s *Service) allow(ctx context.Context, limiter ratelimit.Limiter, namespace, identity string) error {
	res, err := limiter.Allow(ctx, ratelimit.Key(namespace, identity))
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if !res.Allowed {
		return &RateLimitedError{
			RetryAfter: res.ResetAt.Sub(s.now()),
			ResetAt:    res.ResetAt,
		}
	}
	return nil
}

// notify delivers a lifecycle event without affecting the already-committed
// transition; delivery errors are logged and swallowed.
func (s *Service) notify(ctx context.Context, accountID string, kind EventKind) {
	event := newEvent(accountID, kind, s.now())
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "Failed to deliver lifecycle notification",
			logger.AccountID(accountID),
			logger.EventType(string(kind)),
			logger.Error(err),
		)
	}
}

// sealSecret encrypts the secret for storage when an encryption key is
// configured; otherwise it is stored as-is.
func (s *Service) sealSecret(secret string) (string, error) {
	if s.encryptionKey == nil {
		return secret, nil
	}
	return totp.EncryptSecret(secret, s.encryptionKey)
}

// openSecret reverses sealSecret.
func (s *Service) openSecret(stored string) (string, error) {
	if s.encryptionKey == nil {
		return stored, nil
	}
	return totp.DecryptSecret(stored, s.encryptionKey)
}

func otpShape(code string) bool {
	if len(code) != totp.Digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func hashCodes(codes []string) []string {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = totp.HashRecoveryCode(code)
	}
	return hashes
}
