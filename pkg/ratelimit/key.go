package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrymomot/guardkit/pkg/fingerprint"
)

// maxKeyLength is the maximum allowed length for a rate limit key to prevent
// excessively long storage keys in backends like Redis.
const maxKeyLength = 64

// Key builds the composite storage key for a namespace and caller identity.
func Key(namespace, identity string) string {
	return namespace + ":" + identity
}

// KeyFunc extracts a caller identity from an HTTP request for rate limiting.
type KeyFunc func(*http.Request) string

// Identity returns a KeyFunc that prefers an authenticated account
// identifier and falls back to the request's device fingerprint, so
// anonymous callers are still individually throttled.
func Identity(accountID func(*http.Request) string) KeyFunc {
	return func(r *http.Request) string {
		if accountID != nil {
			if id := accountID(r); id != "" {
				return id
			}
		}
		return fingerprint.Generate(r)
	}
}

// Namespaced prefixes the extracted identity with an endpoint-specific
// namespace so each operation gets its own quota.
func Namespaced(namespace string, fn KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		identity := fn(r)
		if identity == "" {
			return ""
		}
		return Key(namespace, identity)
	}
}

// Composite combines multiple key extraction functions into a single key.
// Long keys (>64 chars) are hashed to 32 hex chars using SHA-256 to keep
// storage keys short without meaningful collision risk.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}

		if len(parts) == 0 {
			return ""
		}

		if len(parts) == 1 && len(parts[0]) <= maxKeyLength {
			return parts[0]
		}

		combined := strings.Join(parts, ":")

		if len(combined) > maxKeyLength {
			hash := sha256.Sum256([]byte(combined))
			return hex.EncodeToString(hash[:16])
		}

		return combined
	}
}
