package base32codec

import (
	"encoding/base32"
	"errors"
	"strings"
)

// ErrMalformedInput indicates the input cannot form a whole number of bytes
// after sanitization.
var ErrMalformedInput = errors.New("malformed base32 input")

// alphabet is the RFC 4648 base32 alphabet. Secrets are encoded without
// padding so they stay short enough to type into an authenticator app.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Encode returns the unpadded RFC 4648 base32 representation of b.
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// Decode converts base32 text back to raw bytes. Input is normalized before
// decoding: lowercase letters are uppercased and any character outside the
// alphabet (whitespace, dashes, trailing '=' padding) is dropped rather than
// rejected, so secrets copied from authenticator apps or printed with
// grouping separators still decode. Decode(Encode(b)) == b for any b.
func Decode(s string) ([]byte, error) {
	sanitized := Normalize(s)
	b, err := encoding.DecodeString(sanitized)
	if err != nil {
		return nil, errors.Join(ErrMalformedInput, err)
	}
	return b, nil
}

// Normalize uppercases s and strips every character outside the base32
// alphabet. The result is valid Decode input as long as its length maps to a
// whole number of bytes.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
