package ports

import (
	"context"
	"time"

	"github.com/hyprmtrx/hvm/core"
)

// IdentityStore is the identity ledger. A handle moves from absent to
// registered exactly once; there is no update or delete path.
type IdentityStore interface {
	// Get looks an identity up by handle; nil when absent
	Get(ctx context.Context, handle string) (*core.Identity, error)

	// GetByAuthAddress looks an identity up by an authenticating
	// address on a chain; nil when absent
	GetByAuthAddress(ctx context.Context, chain core.Chain, address string) (*core.Identity, error)

	// Create persists a new identity atomically. The uniqueness check
	// on the handle and on every auth address happens inside the same
	// operation as the insert; a collision is core.ErrDuplicateIdentity.
	Create(ctx context.Context, identity *core.Identity) error
}

// KeyStore holds encrypted custody key records, one set per handle
type KeyStore interface {
	// Put stores a handle's records. It is create-only: a handle that
	// already has records is core.ErrDuplicateIdentity, never an
	// overwrite, so a racing registration cannot clobber the records
	// another request wrote.
	Put(ctx context.Context, handle string, records []core.KeyRecord) error

	Get(ctx context.Context, handle string) ([]core.KeyRecord, error)

	// Delete removes a handle's records; used to clean up when the
	// ledger write fails after keys were already stored
	Delete(ctx context.Context, handle string) error
}

// NonceStore enforces single-use challenges. Consume marks a nonce as
// used and reports whether this call was the first use.
type NonceStore interface {
	Consume(ctx context.Context, address, nonce string, ttl time.Duration) (bool, error)
}
