// Package auth implements the challenge-response wallet ownership
// proofs: EIP-191 personal-message signatures for EVM wallets and
// Constellation address-format validation for DAG wallets.
package auth

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/wallet"
)

// DefaultFreshness bounds how old a signed challenge may be
const DefaultFreshness = 5 * time.Minute

// Authenticator verifies wallet ownership proofs. Every negative
// outcome is a plain false with the reason logged server-side; callers
// never learn which sub-check failed.
type Authenticator struct {
	freshness time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewAuthenticator creates an Authenticator with the default freshness
// window.
func NewAuthenticator(log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{
		freshness: DefaultFreshness,
		log:       log,
		now:       time.Now,
	}
}

// IssueChallenge renders a fresh challenge for the subject address
func (a *Authenticator) IssueChallenge(address string) core.Challenge {
	return NewChallenge(address, a.now())
}

// Verify checks a wallet ownership proof. For SchemeExternalSignature
// the signature must recover to the subject address over the exact
// rendered message; for SchemeAddressProof the address itself is
// validated against the network's format rules.
func (a *Authenticator) Verify(scheme core.Scheme, address, signature, message string) bool {
	switch scheme {
	case core.SchemeExternalSignature:
		return a.verifySignature(address, signature, message)
	case core.SchemeAddressProof:
		if !wallet.ValidateDAGAddress(address) {
			a.log.Info("dag address failed format validation", "address", address)
			return false
		}
		return true
	}
	a.log.Warn("unknown authentication scheme", "scheme", scheme)
	return false
}

func (a *Authenticator) verifySignature(address, signature, message string) bool {
	if !common.IsHexAddress(address) {
		a.log.Info("subject is not a hex address", "address", address)
		return false
	}

	millis, ok := parseChallengeMessage(message)
	if !ok {
		a.log.Info("challenge message has no parsable timestamp")
		return false
	}

	// The verifier re-renders from (address, nonce); no fuzzy matching
	// of timestamps, a single-character drift fails.
	if message != ChallengeMessage(address, millis) {
		a.log.Info("signed message does not match rendered challenge", "address", address)
		return false
	}

	issued := time.UnixMilli(millis)
	now := a.now()
	if now.Sub(issued) > a.freshness || issued.Sub(now) > a.freshness {
		a.log.Info("challenge outside freshness window", "address", address, "issued_at", issued)
		return false
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		a.log.Info("signature is not valid hex", "error", err)
		return false
	}
	if len(sig) != crypto.SignatureLength {
		a.log.Info("signature has wrong length", "length", len(sig))
		return false
	}

	// wallets emit V as 27/28, go-ethereum expects 0/1
	recoverSig := make([]byte, crypto.SignatureLength)
	copy(recoverSig, sig)
	if recoverSig[64] >= 27 {
		recoverSig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), recoverSig)
	if err != nil {
		a.log.Info("signature recovery failed", "error", err)
		return false
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), address) {
		a.log.Info("recovered address mismatch", "recovered", recovered.Hex())
		return false
	}
	return true
}
