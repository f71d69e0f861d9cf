package base32codec_test

import (
	"crypto/rand"
	"testing"

	"github.com/dmitrymomot/guardkit/pkg/base32codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 1, 2, 3, 4, 5, 8, 10, 16, 20, 32, 64, 100} {
		b := make([]byte, size)
		_, err := rand.Read(b)
		require.NoError(t, err)

		decoded, err := base32codec.Decode(base32codec.Encode(b))
		require.NoError(t, err)
		assert.Equal(t, b, decoded, "round trip failed for %d bytes", size)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "empty", input: nil, want: ""},
		{name: "hello", input: []byte("hello"), want: "NBSWY3DP"},
		{name: "rfc4226 secret", input: []byte("12345678901234567890"), want: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, base32codec.Encode(tt.input))
		})
	}
}

func TestDecodeTolerance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{name: "lowercase", input: "nbswy3dp", want: []byte("hello")},
		{name: "mixed case", input: "NbSwY3dP", want: []byte("hello")},
		{name: "spaces stripped", input: "NBSW Y3DP", want: []byte("hello")},
		{name: "dashes stripped", input: "NBSW-Y3DP", want: []byte("hello")},
		{name: "padding ignored", input: "NBSWY3DP========", want: []byte("hello")},
		{name: "invalid chars stripped", input: "NB0SW1Y3D8P!", want: []byte("hello")},
		{name: "empty", input: "", want: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := base32codec.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	// Single symbol cannot represent a whole byte.
	_, err := base32codec.Decode("A")
	assert.ErrorIs(t, err, base32codec.ErrMalformedInput)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NBSWY3DP", base32codec.Normalize(" nbsw-y3dp ==\n"))
	assert.Equal(t, "", base32codec.Normalize("018!@# \t"))
}
