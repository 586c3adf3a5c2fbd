// Package wallet generates custodial keypairs for the supported chains.
// Generation is pure: persistence and encryption are the caller's job,
// and plaintext keys must never leave the process.
package wallet

import (
	"log/slog"

	"github.com/hyprmtrx/hvm/core"
)

// Wallet is a freshly generated keypair. The private key is plaintext
// and must be handed to the vault synchronously, never serialized.
type Wallet struct {
	Chain      core.Chain
	Address    string
	PrivateKey string
}

// SkippedChain records a chain that could not be provisioned and why
type SkippedChain struct {
	Chain  core.Chain
	Reason string
}

// Result carries both the generated wallets and the skipped chains so
// the caller can decide policy on a partial set explicitly.
type Result struct {
	Wallets []Wallet
	Skipped []SkippedChain
}

// Public returns the public {chain, address} projection of the result
func (r Result) Public() []core.CustodyWallet {
	public := make([]core.CustodyWallet, 0, len(r.Wallets))
	for _, w := range r.Wallets {
		public = append(public, core.CustodyWallet{Chain: w.Chain, Address: w.Address})
	}
	return public
}

type generator func() (address, privateKey string, err error)

// Provisioner generates keypairs per chain, each from its own entropy
type Provisioner struct {
	generators map[core.Chain]generator
	log        *slog.Logger
}

// NewProvisioner creates a Provisioner covering the default chain set
func NewProvisioner(log *slog.Logger) *Provisioner {
	if log == nil {
		log = slog.Default()
	}
	return &Provisioner{
		generators: map[core.Chain]generator{
			core.ChainBase: generateEVM,
			core.ChainETH:  generateEVM,
			core.ChainBNB:  generateEVM,
			core.ChainAVAX: generateEVM,
			core.ChainDAG:  generateDAG,
		},
		log: log,
	}
}

// Provision generates one fresh keypair per requested chain. Unsupported
// chains and generator failures are skipped with a warning so a partial
// result is possible; the caller treats an empty result as recoverable.
func (p *Provisioner) Provision(handle string, chains []core.Chain) Result {
	var res Result
	for _, chain := range chains {
		gen, ok := p.generators[chain]
		if !ok {
			p.log.Warn("unsupported chain, skipping", "chain", chain, "handle", handle)
			res.Skipped = append(res.Skipped, SkippedChain{Chain: chain, Reason: "unsupported chain"})
			continue
		}
		address, privateKey, err := gen()
		if err != nil {
			p.log.Warn("chain generator failed, skipping", "chain", chain, "handle", handle, "error", err)
			res.Skipped = append(res.Skipped, SkippedChain{Chain: chain, Reason: "generator failure"})
			continue
		}
		res.Wallets = append(res.Wallets, Wallet{Chain: chain, Address: address, PrivateKey: privateKey})
	}
	return res
}
