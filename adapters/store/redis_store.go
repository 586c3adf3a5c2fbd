// Package store provides the identity ledger, custody key store and
// challenge nonce store, backed by Redis in production and by memory in
// tests.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/ports"
)

const (
	identityPrefix = "hvm:identity:"
	authAddrPrefix = "hvm:authaddr:"
	keysPrefix     = "hvm:keys:"
	noncePrefix    = "hvm:nonce:"
)

// createScript inserts an identity document and its auth-address index
// entries as one atomic operation. KEYS[1] is the identity document key,
// the rest are index keys; ARGV[1] is the document, ARGV[2] the handle.
var createScript = redis.NewScript(`
for i = 1, #KEYS do
	if redis.call("EXISTS", KEYS[i]) == 1 then
		return 0
	end
end
redis.call("SET", KEYS[1], ARGV[1])
for i = 2, #KEYS do
	redis.call("SET", KEYS[i], ARGV[2])
end
return 1
`)

// RedisIdentityStore is the Redis-backed identity ledger
type RedisIdentityStore struct {
	client *redis.Client
}

// NewRedisIdentityStore creates a ledger on an existing Redis client
func NewRedisIdentityStore(client *redis.Client) *RedisIdentityStore {
	return &RedisIdentityStore{client: client}
}

// Get looks an identity up by handle
func (s *RedisIdentityStore) Get(ctx context.Context, handle string) (*core.Identity, error) {
	raw, err := s.client.Get(ctx, identityPrefix+handle).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}

	var identity core.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: corrupt identity document for %s", core.ErrPersistence, handle)
	}
	return &identity, nil
}

// GetByAuthAddress resolves the auth-address index, then the document
func (s *RedisIdentityStore) GetByAuthAddress(ctx context.Context, chain core.Chain, address string) (*core.Identity, error) {
	handle, err := s.client.Get(ctx, authAddrPrefix+authIndexKey(chain, address)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}
	return s.Get(ctx, handle)
}

// Create inserts a new identity through a Lua script so the uniqueness
// checks and the writes are a single atomic round trip.
func (s *RedisIdentityStore) Create(ctx context.Context, identity *core.Identity) error {
	doc, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	keys := []string{identityPrefix + identity.Handle}
	for chain, address := range identity.AuthWallets {
		keys = append(keys, authAddrPrefix+authIndexKey(chain, address))
	}

	inserted, err := createScript.Run(ctx, s.client, keys, string(doc), identity.Handle).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}
	if inserted == 0 {
		return core.ErrDuplicateIdentity
	}
	return nil
}

// RedisKeyStore holds encrypted custody key records in Redis
type RedisKeyStore struct {
	client *redis.Client
}

// NewRedisKeyStore creates a key store on an existing Redis client
func NewRedisKeyStore(client *redis.Client) *RedisKeyStore {
	return &RedisKeyStore{client: client}
}

// Put stores a handle's encrypted key records as one JSON document.
// SET NX keeps it create-only: a concurrent registration for the same
// handle cannot overwrite records another request wrote.
func (s *RedisKeyStore) Put(ctx context.Context, handle string, records []core.KeyRecord) error {
	doc, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal key records: %w", err)
	}
	stored, err := s.client.SetNX(ctx, keysPrefix+handle, doc, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}
	if !stored {
		return core.ErrDuplicateIdentity
	}
	return nil
}

// Get returns a handle's encrypted key records; nil when absent
func (s *RedisKeyStore) Get(ctx context.Context, handle string) ([]core.KeyRecord, error) {
	raw, err := s.client.Get(ctx, keysPrefix+handle).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}

	var records []core.KeyRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: corrupt key records for %s", core.ErrPersistence, handle)
	}
	return records, nil
}

// Delete removes a handle's records
func (s *RedisKeyStore) Delete(ctx context.Context, handle string) error {
	if err := s.client.Del(ctx, keysPrefix+handle).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}
	return nil
}

// RedisNonceStore enforces single-use challenges with SET NX + TTL
type RedisNonceStore struct {
	client *redis.Client
}

// NewRedisNonceStore creates a nonce store on an existing Redis client
func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client}
}

// Consume marks (address, nonce) as used; the entry expires with the
// challenge freshness window
func (s *RedisNonceStore) Consume(ctx context.Context, address, nonce string, ttl time.Duration) (bool, error) {
	firstUse, err := s.client.SetNX(ctx, noncePrefix+address+":"+nonce, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}
	return firstUse, nil
}

var (
	_ ports.IdentityStore = (*RedisIdentityStore)(nil)
	_ ports.KeyStore      = (*RedisKeyStore)(nil)
	_ ports.NonceStore    = (*RedisNonceStore)(nil)
)
