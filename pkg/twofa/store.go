package twofa

import (
	"context"
	"slices"
	"sync"
)

// Credential is the persisted state of an enabled two-factor credential.
// Secret is the Base32 TOTP secret, AES-encrypted when the service is
// configured with an encryption key. RecoveryCodes holds SHA-256 hashes of
// the unconsumed recovery codes; plaintext codes are never persisted.
type Credential struct {
	Secret        string
	RecoveryCodes []string
}

// CredentialStore is the persistence collaborator. Implementations live
// outside this package (database, external service); only the contract is
// defined here. Get must return ErrCredentialNotFound when no credential is
// persisted for the account.
type CredentialStore interface {
	Get(ctx context.Context, accountID string) (Credential, error)
	Save(ctx context.Context, accountID string, cred Credential) error
	Delete(ctx context.Context, accountID string) error
}

// MemoryCredentialStore is a thread-safe in-memory CredentialStore for tests
// and single-process development setups. Not durable.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		creds: make(map[string]Credential),
	}
}

func (s *MemoryCredentialStore) Get(ctx context.Context, accountID string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	// Copy the slice so callers cannot mutate stored state.
	cred.RecoveryCodes = slices.Clone(cred.RecoveryCodes)
	return cred, nil
}

func (s *MemoryCredentialStore) Save(ctx context.Context, accountID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred.RecoveryCodes = slices.Clone(cred.RecoveryCodes)
	s.creds[accountID] = cred
	return nil
}

func (s *MemoryCredentialStore) Delete(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, accountID)
	return nil
}
