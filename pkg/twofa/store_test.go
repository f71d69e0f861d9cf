package twofa_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrymomot/guardkit/pkg/twofa"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCredentialStore(t *testing.T) {
	t.Parallel()

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		store := twofa.NewMemoryCredentialStore()
		_, err := store.Get(context.Background(), "acct-1")
		assert.ErrorIs(t, err, twofa.ErrCredentialNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		t.Parallel()

		store := twofa.NewMemoryCredentialStore()
		ctx := context.Background()

		cred := twofa.Credential{
			Secret:        "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			RecoveryCodes: []string{"hash-1", "hash-2"},
		}
		require.NoError(t, store.Save(ctx, "acct-1", cred))

		got, err := store.Get(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, cred, got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		t.Parallel()

		store := twofa.NewMemoryCredentialStore()
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "acct-1", twofa.Credential{Secret: "old"}))
		require.NoError(t, store.Save(ctx, "acct-1", twofa.Credential{Secret: "new"}))

		got, err := store.Get(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Secret)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		store := twofa.NewMemoryCredentialStore()
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "acct-1", twofa.Credential{Secret: "s"}))
		require.NoError(t, store.Delete(ctx, "acct-1"))

		_, err := store.Get(ctx, "acct-1")
		assert.ErrorIs(t, err, twofa.ErrCredentialNotFound)

		// Deleting an absent credential is not an error.
		assert.NoError(t, store.Delete(ctx, "acct-1"))
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		t.Parallel()

		store := twofa.NewMemoryCredentialStore()
		ctx := context.Background()

		saved := twofa.Credential{Secret: "s", RecoveryCodes: []string{"hash-1"}}
		require.NoError(t, store.Save(ctx, "acct-1", saved))

		// Mutating the caller's slice after Save must not leak into the store.
		saved.RecoveryCodes[0] = "tampered"

		got, err := store.Get(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"hash-1"}, got.RecoveryCodes)

		// Mutating the returned slice must not leak either.
		got.RecoveryCodes[0] = "tampered"
		again, err := store.Get(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"hash-1"}, again.RecoveryCodes)
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		store := twofa.NewMemoryCredentialStore()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := string(rune('a' + i))
				_ = store.Save(ctx, id, twofa.Credential{Secret: id})
				_, _ = store.Get(ctx, id)
				_ = store.Delete(ctx, id)
			}()
		}
		wg.Wait()
	})
}
