package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/guardkit/pkg/base32codec"
)

const (
	Digits    = 6      // Standard 6-digit codes (RFC 4226)
	Period    = 30     // 30-second time step (RFC 6238 standard)
	Algorithm = "SHA1" // HMAC-SHA1 (RFC 6238 standard)

	// DefaultWindow is the number of adjacent time steps accepted on either
	// side of the current one. 1 absorbs up to ±30s of clock drift, giving a
	// 90-second total acceptance span.
	DefaultWindow = 1

	// SecretSize is the raw secret length in bytes. 160 bits matches the
	// RFC 4226 recommendation for HMAC-SHA1.
	SecretSize = 20
)

// URIParams describes a credential for provisioning URI generation.
type URIParams struct {
	Secret      string // Base32-encoded secret key (required)
	AccountName string // User identifier such as an email address (required)
	Issuer      string // Service name shown in authenticator apps (required)
}

// Validate ensures all required parameters are present.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32codec.Encode(secret), nil
}

// GetTOTPURI builds a provisioning URI for authenticator apps following the
// Key Uri Format: https://github.com/google/google-authenticator/wiki/Key-Uri-Format
//
// The query string is assembled by hand because some authenticator apps are
// picky about parameter order; the secret must come first.
func GetTOTPURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s&algorithm=%s&digits=%d&period=%d",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
		params.Secret,
		url.QueryEscape(params.Issuer),
		Algorithm,
		Digits,
		Period,
	), nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
// It returns the code as a zero-padded decimal string of the given width.
func GenerateHOTP(key []byte, counter uint64, digits int) string {
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte
	// slice; the sign bit is masked off to get a positive 31-bit integer.
	offset := sum[len(sum)-1] & 0x0f
	code := (uint32(sum[offset]&0x7f) << 24) |
		(uint32(sum[offset+1]) << 16) |
		(uint32(sum[offset+2]) << 8) |
		uint32(sum[offset+3])

	code %= uint32(math.Pow10(digits))

	return fmt.Sprintf("%0*d", digits, code)
}

// GenerateTOTP generates the code for the current 30-second time step.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPAt(secret, time.Now())
}

// GenerateTOTPAt generates the code for the time step containing t.
// Useful for tests and for generating codes for specific moments.
func GenerateTOTPAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return GenerateHOTP(key, timeStep(t), Digits), nil
}

// ValidateTOTP checks a user-supplied code against the secret, accepting the
// current time step plus DefaultWindow steps on either side.
func ValidateTOTP(secret, code string) (bool, error) {
	return ValidateTOTPAt(secret, code, time.Now(), DefaultWindow)
}

// ValidateTOTPAt checks a code at a given reference time with an explicit
// drift window. A code that is not exactly six ASCII digits after whitespace
// trimming is rejected before any key material is touched, so malformed input
// never costs an HMAC computation.
func ValidateTOTPAt(secret, code string, t time.Time, window int) (bool, error) {
	code = strings.TrimSpace(code)
	if !isDigits(code) {
		return false, ErrInvalidCode
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	step := int64(timeStep(t))
	match := 0
	for i := -window; i <= window; i++ {
		s := step + int64(i)
		if s < 0 {
			continue
		}
		candidate := GenerateHOTP(key, uint64(s), Digits)
		// Constant-time comparison; accumulate instead of returning early so
		// a match does not shorten the loop.
		match |= subtle.ConstantTimeCompare([]byte(candidate), []byte(code))
	}

	return match == 1, nil
}

// timeStep returns the RFC 6238 counter value for t.
func timeStep(t time.Time) uint64 {
	return uint64(t.Unix() / Period)
}

func decodeSecret(secret string) ([]byte, error) {
	key, err := base32codec.Decode(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

func isDigits(s string) bool {
	if len(s) != Digits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
