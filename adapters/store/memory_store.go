package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/ports"
)

// normalizeAddress canonicalizes an address for index lookups. EVM
// addresses are case-insensitive hex; DAG addresses are case-sensitive
// base58 and kept as-is.
func normalizeAddress(chain core.Chain, address string) string {
	if chain.IsEVM() {
		return strings.ToLower(address)
	}
	return address
}

func authIndexKey(chain core.Chain, address string) string {
	return string(chain) + ":" + normalizeAddress(chain, address)
}

// MemoryIdentityStore is an in-memory identity ledger for tests and
// single-node development
type MemoryIdentityStore struct {
	mu         sync.RWMutex
	byHandle   map[string]*core.Identity
	byAuthAddr map[string]string // chain:address -> handle
}

// NewMemoryIdentityStore creates an empty in-memory ledger
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{
		byHandle:   make(map[string]*core.Identity),
		byAuthAddr: make(map[string]string),
	}
}

// Get looks an identity up by handle
func (s *MemoryIdentityStore) Get(ctx context.Context, handle string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.byHandle[handle]
	if !ok {
		return nil, nil
	}
	copied := *identity
	return &copied, nil
}

// GetByAuthAddress looks an identity up by an authenticating address
func (s *MemoryIdentityStore) GetByAuthAddress(ctx context.Context, chain core.Chain, address string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handle, ok := s.byAuthAddr[authIndexKey(chain, address)]
	if !ok {
		return nil, nil
	}
	copied := *s.byHandle[handle]
	return &copied, nil
}

// Create inserts a new identity. The uniqueness checks and the insert
// run under one lock, so concurrent duplicates cannot both succeed.
func (s *MemoryIdentityStore) Create(ctx context.Context, identity *core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHandle[identity.Handle]; exists {
		return core.ErrDuplicateIdentity
	}
	for chain, address := range identity.AuthWallets {
		if _, exists := s.byAuthAddr[authIndexKey(chain, address)]; exists {
			return core.ErrDuplicateIdentity
		}
	}

	copied := *identity
	s.byHandle[identity.Handle] = &copied
	for chain, address := range identity.AuthWallets {
		s.byAuthAddr[authIndexKey(chain, address)] = identity.Handle
	}
	return nil
}

// MemoryKeyStore holds encrypted key records in memory
type MemoryKeyStore struct {
	mu      sync.RWMutex
	records map[string][]core.KeyRecord
}

// NewMemoryKeyStore creates an empty in-memory key store
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{records: make(map[string][]core.KeyRecord)}
}

// Put stores a handle's encrypted key records. Create-only: existing
// records are never overwritten.
func (s *MemoryKeyStore) Put(ctx context.Context, handle string, records []core.KeyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[handle]; exists {
		return core.ErrDuplicateIdentity
	}
	s.records[handle] = append([]core.KeyRecord(nil), records...)
	return nil
}

// Get returns a handle's encrypted key records; nil when absent
func (s *MemoryKeyStore) Get(ctx context.Context, handle string) ([]core.KeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.records[handle]
	if !ok {
		return nil, nil
	}
	return append([]core.KeyRecord(nil), records...), nil
}

// Delete removes a handle's records
func (s *MemoryKeyStore) Delete(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, handle)
	return nil
}

// MemoryNonceStore tracks consumed challenge nonces in memory
type MemoryNonceStore struct {
	mu       sync.Mutex
	consumed map[string]time.Time
}

// NewMemoryNonceStore creates an empty in-memory nonce store
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{consumed: make(map[string]time.Time)}
}

// Consume marks (address, nonce) as used and reports whether this was
// the first use. Expired entries are reaped opportunistically.
func (s *MemoryNonceStore) Consume(ctx context.Context, address, nonce string, ttl time.Duration) (bool, error) {
	key := address + ":" + nonce
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, expiry := range s.consumed {
		if now.After(expiry) {
			delete(s.consumed, k)
		}
	}

	if expiry, exists := s.consumed[key]; exists && now.Before(expiry) {
		return false, nil
	}
	s.consumed[key] = now.Add(ttl)
	return true, nil
}

var (
	_ ports.IdentityStore = (*MemoryIdentityStore)(nil)
	_ ports.KeyStore      = (*MemoryKeyStore)(nil)
	_ ports.NonceStore    = (*MemoryNonceStore)(nil)
)
