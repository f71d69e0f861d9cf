package totp

import "errors"

var (
	ErrInvalidSecret                 = errors.New("invalid secret")
	ErrInvalidCode                   = errors.New("invalid code format")
	ErrMissingSecret                 = errors.New("missing secret")
	ErrMissingAccountName            = errors.New("missing account name")
	ErrMissingIssuer                 = errors.New("missing issuer")
	ErrFailedToGenerateSecretKey     = errors.New("failed to generate TOTP secret key")
	ErrInvalidRecoveryCodeCount      = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateRecoveryCode  = errors.New("failed to generate recovery code")
	ErrFailedToEncryptSecret         = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret         = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
)
