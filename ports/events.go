package ports

import (
	"context"

	"github.com/hyprmtrx/hvm/core"
)

// EventPublisher notifies other components about identity lifecycle
// events. Publish failures must never fail the request that raised them.
type EventPublisher interface {
	PublishRegistered(ctx context.Context, identity *core.Identity, game string) error
	PublishAuthenticated(ctx context.Context, handle, game string) error
}
