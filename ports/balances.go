package ports

import (
	"context"

	"github.com/hyprmtrx/hvm/core"
)

// BalanceReporter pushes a player's custody wallet balances to the
// downstream game API after a successful sign-in or registration.
type BalanceReporter interface {
	Report(ctx context.Context, handle, game string, wallets []core.CustodyWallet) error
}
