package totp_test

import (
	"regexp"
	"testing"

	"github.com/dmitrymomot/guardkit/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecoveryCodes(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateRecoveryCodes(8)
	require.NoError(t, err)
	require.Len(t, codes, 8)

	format := regexp.MustCompile(`^[0-9A-F]{16}$`)
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		assert.Regexp(t, format, code)
		_, dup := seen[code]
		assert.False(t, dup, "duplicate recovery code %s", code)
		seen[code] = struct{}{}
	}
}

func TestGenerateRecoveryCodesInvalidCount(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, -1} {
		_, err := totp.GenerateRecoveryCodes(count)
		assert.ErrorIs(t, err, totp.ErrInvalidRecoveryCodeCount)
	}
}

func TestVerifyRecoveryCode(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateRecoveryCodes(1)
	require.NoError(t, err)

	hash := totp.HashRecoveryCode(codes[0])
	assert.NotEqual(t, codes[0], hash)
	assert.True(t, totp.VerifyRecoveryCode(codes[0], hash))
	assert.False(t, totp.VerifyRecoveryCode("0000000000000000", hash))
	assert.False(t, totp.VerifyRecoveryCode("", hash))
}

func TestHashRecoveryCodeDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, totp.HashRecoveryCode("ABCDEF0123456789"), totp.HashRecoveryCode("ABCDEF0123456789"))
	assert.NotEqual(t, totp.HashRecoveryCode("ABCDEF0123456789"), totp.HashRecoveryCode("ABCDEF0123456788"))
}
