// Package service sequences authentication, provisioning, custody and
// token issuance into the end-to-end sign-in/registration flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/hyprmtrx/hvm/auth"
	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/ports"
	"github.com/hyprmtrx/hvm/vault"
	"github.com/hyprmtrx/hvm/wallet"
)

// DefaultSessionTTL is how long an issued session token stays valid
const DefaultSessionTTL = time.Hour

// Response statuses and the closed set of failure reasons. Nothing
// below this service leaks an unstructured error to the caller.
const (
	StatusAwaitingSignature = "awaiting_signature"
	StatusSuccess           = "success"
	StatusFailure           = "failure"

	ReasonInvalidRequest       = "invalid request"
	ReasonUnsupportedScheme    = "unsupported authentication scheme"
	ReasonAuthenticationFailed = "authentication failed"
	ReasonAlreadyRegistered    = "already registered"
	ReasonServiceUnavailable   = "service unavailable"
	ReasonInternal             = "internal error"
)

// AuthRequest is the inbound authentication/registration request
type AuthRequest struct {
	Address   string // externally-owned wallet address claimed by the caller
	Scheme    string // auth_type tag: "metamask" or "stargazer"
	Message   string // the challenge message the wallet signed
	Signature string // wallet signature over Message (signature scheme only)
	Handle    string // optional requested player handle
	Game      string // requesting game / scope context
}

func (r AuthRequest) hasProof() bool {
	return r.Signature != "" || r.Message != ""
}

// AuthResult is the outbound response, mapped to the closed taxonomy
type AuthResult struct {
	Status         string               `json:"status"`
	Reason         string               `json:"reason,omitempty"`
	Message        string               `json:"message,omitempty"`
	Token          string               `json:"token,omitempty"`
	Handle         string               `json:"handle,omitempty"`
	CustodyWallets []core.CustodyWallet `json:"custody_wallets,omitempty"`
}

func failure(reason string) AuthResult {
	return AuthResult{Status: StatusFailure, Reason: reason}
}

// AuthService orchestrates the identity and custody flow
type AuthService struct {
	authenticator *auth.Authenticator
	provisioner   *wallet.Provisioner
	vault         *vault.Vault
	identities    ports.IdentityStore
	keys          ports.KeyStore
	nonces        ports.NonceStore
	tokenizer     ports.Tokenizer
	events        ports.EventPublisher
	balances      ports.BalanceReporter

	defaultChains []core.Chain
	sessionTTL    time.Duration
	nonceTTL      time.Duration
	log           *slog.Logger
}

// NewAuthService wires the orchestrator. The balance reporter may be
// nil when no game API is configured.
func NewAuthService(
	authenticator *auth.Authenticator,
	provisioner *wallet.Provisioner,
	keyVault *vault.Vault,
	identities ports.IdentityStore,
	keys ports.KeyStore,
	nonces ports.NonceStore,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	balances ports.BalanceReporter,
	defaultChains []core.Chain,
	log *slog.Logger,
) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		provisioner:   provisioner,
		vault:         keyVault,
		identities:    identities,
		keys:          keys,
		nonces:        nonces,
		tokenizer:     tokenizer,
		events:        events,
		balances:      balances,
		defaultChains: defaultChains,
		sessionTTL:    DefaultSessionTTL,
		nonceTTL:      auth.DefaultFreshness,
		log:           log,
	}
}

// Authenticate runs the sign-in/registration state machine. A request
// without a proof terminates at the challenge; a request with a proof
// runs through verification to either an existing identity or a fresh
// registration, then token issuance.
func (s *AuthService) Authenticate(ctx context.Context, req AuthRequest) AuthResult {
	scheme, ok := core.ParseScheme(req.Scheme)
	if !ok {
		return failure(ReasonUnsupportedScheme)
	}
	if req.Address == "" {
		return failure(ReasonInvalidRequest)
	}
	if scheme == core.SchemeExternalSignature && !common.IsHexAddress(req.Address) {
		return failure(ReasonInvalidRequest)
	}

	if !req.hasProof() {
		challenge := s.authenticator.IssueChallenge(req.Address)
		return AuthResult{Status: StatusAwaitingSignature, Message: challenge.Message}
	}

	if !s.authenticator.Verify(scheme, req.Address, req.Signature, req.Message) {
		return failure(ReasonAuthenticationFailed)
	}

	// Challenges carry no server-side used flag; a retried registration
	// legitimately re-presents the same proof. Replays within the
	// freshness window are therefore surfaced for operators rather
	// than rejected.
	if scheme == core.SchemeExternalSignature {
		if nonce, ok := auth.ChallengeNonce(req.Message); ok {
			firstUse, err := s.nonces.Consume(ctx, req.Address, nonce, s.nonceTTL)
			if err != nil {
				s.log.Warn("nonce store unavailable, replay tracking skipped", "error", err)
			} else if !firstUse {
				s.log.Warn("challenge proof replayed within freshness window", "address", req.Address, "nonce", nonce)
			}
		}
	}

	authChain := scheme.AuthChain()
	existing, err := s.identities.GetByAuthAddress(ctx, authChain, req.Address)
	if err != nil {
		s.log.Error("identity lookup failed", "error", err)
		return failure(ReasonServiceUnavailable)
	}
	if existing != nil {
		return s.signIn(ctx, existing, req.Game)
	}

	return s.register(ctx, scheme, req)
}

// signIn issues a token for an already registered identity. No new
// keys are ever generated on this path.
func (s *AuthService) signIn(ctx context.Context, identity *core.Identity, game string) AuthResult {
	token, err := s.issueToken(identity, game)
	if err != nil {
		s.log.Error("token issuance failed", "handle", identity.Handle, "error", err)
		return failure(ReasonInternal)
	}

	if err := s.events.PublishAuthenticated(ctx, identity.Handle, game); err != nil {
		s.log.Warn("failed to publish authenticated event", "handle", identity.Handle, "error", err)
	}
	s.reportBalances(ctx, identity, game)

	return AuthResult{
		Status:         StatusSuccess,
		Token:          token,
		Handle:         identity.Handle,
		CustodyWallets: identity.CustodyWallets,
	}
}

// register provisions custody wallets, stores their encrypted keys and
// persists the identity. The key-record write and the ledger write are
// one logical unit: a failed ledger write rolls the records back so no
// encrypted material is orphaned without an identity.
func (s *AuthService) register(ctx context.Context, scheme core.Scheme, req AuthRequest) AuthResult {
	handle := req.Handle
	if handle == "" {
		handle = "player_" + uuid.New().String()[:8]
	} else {
		taken, err := s.identities.Get(ctx, handle)
		if err != nil {
			s.log.Error("handle lookup failed", "error", err)
			return failure(ReasonServiceUnavailable)
		}
		if taken != nil {
			return failure(ReasonAlreadyRegistered)
		}
	}

	// race guard: a concurrent registration may have landed since the
	// first lookup; better to detect it before a provisioning cycle
	authChain := scheme.AuthChain()
	existing, err := s.identities.GetByAuthAddress(ctx, authChain, req.Address)
	if err != nil {
		s.log.Error("identity lookup failed", "error", err)
		return failure(ReasonServiceUnavailable)
	}
	if existing != nil {
		return s.signIn(ctx, existing, req.Game)
	}

	provisioned := s.provisioner.Provision(handle, s.defaultChains)
	for _, skipped := range provisioned.Skipped {
		s.log.Warn("chain skipped during provisioning", "handle", handle, "chain", skipped.Chain, "reason", skipped.Reason)
	}
	if len(provisioned.Wallets) == 0 {
		s.log.Error("no wallets could be provisioned", "handle", handle)
		return failure(ReasonServiceUnavailable)
	}

	records := make([]core.KeyRecord, 0, len(provisioned.Wallets))
	for _, w := range provisioned.Wallets {
		envelope, err := s.vault.Encrypt(w.PrivateKey)
		if err != nil {
			s.log.Error("vault encryption failed", "handle", handle, "chain", w.Chain, "error", err)
			return failure(ReasonInternal)
		}
		records = append(records, core.KeyRecord{
			Chain:               w.Chain,
			Address:             w.Address,
			EncryptedPrivateKey: envelope,
		})
	}

	if err := s.keys.Put(ctx, handle, records); err != nil {
		if errors.Is(err, core.ErrDuplicateIdentity) {
			// another registration claimed this handle between the
			// lookup and now; its records are left untouched
			winner, lookupErr := s.identities.GetByAuthAddress(ctx, authChain, req.Address)
			if lookupErr == nil && winner != nil {
				return s.signIn(ctx, winner, req.Game)
			}
			return failure(ReasonAlreadyRegistered)
		}
		s.log.Error("key record write failed", "handle", handle, "error", err)
		return failure(ReasonServiceUnavailable)
	}

	identity := &core.Identity{
		Handle:         handle,
		AuthWallets:    map[core.Chain]string{authChain: req.Address},
		CustodyWallets: provisioned.Public(),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		s.rollbackKeys(ctx, handle)

		if errors.Is(err, core.ErrDuplicateIdentity) {
			// the loser of a concurrent registration responds as an
			// existing identity, not as a hard error
			winner, lookupErr := s.identities.GetByAuthAddress(ctx, authChain, req.Address)
			if lookupErr == nil && winner != nil {
				return s.signIn(ctx, winner, req.Game)
			}
			return failure(ReasonAlreadyRegistered)
		}
		s.log.Error("identity create failed", "handle", handle, "error", err)
		return failure(ReasonServiceUnavailable)
	}

	// mint the token before announcing the registration so a token
	// failure is not reported downstream as a completed sign-up
	token, err := s.issueToken(identity, req.Game)
	if err != nil {
		s.log.Error("token issuance failed", "handle", handle, "error", err)
		return failure(ReasonInternal)
	}

	if err := s.events.PublishRegistered(ctx, identity, req.Game); err != nil {
		s.log.Warn("failed to publish registered event", "handle", handle, "error", err)
	}
	s.reportBalances(ctx, identity, req.Game)

	return AuthResult{
		Status:         StatusSuccess,
		Token:          token,
		Handle:         identity.Handle,
		CustodyWallets: identity.CustodyWallets,
	}
}

// ValidateSession parses and validates a bearer token. Expiry is
// enforced here, at verification time.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*core.Session, error) {
	return s.tokenizer.TokenToSession(token)
}

func (s *AuthService) issueToken(identity *core.Identity, game string) (string, error) {
	now := time.Now()
	session := &core.Session{
		Handle:      identity.Handle,
		AuthWallets: identity.AuthWallets,
		Game:        game,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}
	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", fmt.Errorf("failed to mint session token: %w", err)
	}
	return token, nil
}

func (s *AuthService) reportBalances(ctx context.Context, identity *core.Identity, game string) {
	if s.balances == nil {
		return
	}
	if err := s.balances.Report(ctx, identity.Handle, game, identity.CustodyWallets); err != nil {
		s.log.Warn("balance report failed", "handle", identity.Handle, "error", err)
	}
}

func (s *AuthService) rollbackKeys(ctx context.Context, handle string) {
	if err := s.keys.Delete(ctx, handle); err != nil {
		// orphaned encrypted records without an identity: integrity
		// alarm, surface loudly for operators
		s.log.Error("failed to roll back key records", "handle", handle, "error", err)
	}
}
