package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyprmtrx/hvm/adapters/store"
	"github.com/hyprmtrx/hvm/adapters/tokenizer"
	"github.com/hyprmtrx/hvm/auth"
	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/service"
	"github.com/hyprmtrx/hvm/vault"
	"github.com/hyprmtrx/hvm/wallet"
)

type nopPublisher struct{}

func (nopPublisher) PublishRegistered(ctx context.Context, identity *core.Identity, game string) error {
	return nil
}
func (nopPublisher) PublishAuthenticated(ctx context.Context, handle, game string) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := vault.New([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	svc := service.NewAuthService(
		auth.NewAuthenticator(nil),
		wallet.NewProvisioner(nil),
		v,
		store.NewMemoryIdentityStore(),
		store.NewMemoryKeyStore(),
		store.NewMemoryNonceStore(),
		tokenizer.NewJWTTokenizer([]byte("test-secret")),
		nopPublisher{},
		nil,
		core.DefaultChains,
		nil,
	)
	return SetupRouter(svc)
}

func postAuth(t *testing.T, router *gin.Engine, body map[string]string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

func stringField(t *testing.T, parsed map[string]json.RawMessage, field string) string {
	t.Helper()
	var value string
	require.NoError(t, json.Unmarshal(parsed[field], &value), "field %s", field)
	return value
}

func TestAuthFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	// step 1: no signed message yet
	rec, parsed := postAuth(t, router, map[string]string{
		"wallet_address": address,
		"auth_type":      "metamask",
		"game_name":      "hyprmtrx",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "awaiting_signature", stringField(t, parsed, "status"))
	message := stringField(t, parsed, "message")

	// step 2: sign and resubmit
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[64] += 27

	rec, parsed = postAuth(t, router, map[string]string{
		"wallet_address": address,
		"auth_type":      "metamask",
		"message":        message,
		"signed_message": hexutil.Encode(sig),
		"game_name":      "hyprmtrx",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "success", stringField(t, parsed, "status"))
	token := stringField(t, parsed, "token")
	require.NotEmpty(t, token)

	var wallets []core.CustodyWallet
	require.NoError(t, json.Unmarshal(parsed["custody_wallets"], &wallets))
	assert.Len(t, wallets, len(core.DefaultChains))

	// the issued token opens the protected API
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	require.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meRec.Body.String(), stringField(t, parsed, "handle"))
}

func TestAuthRejectsBadSignatureWith401(t *testing.T) {
	router := newTestRouter(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	_, parsed := postAuth(t, router, map[string]string{
		"wallet_address": address,
		"auth_type":      "metamask",
	})
	message := stringField(t, parsed, "message")

	rec, parsed := postAuth(t, router, map[string]string{
		"wallet_address": address,
		"auth_type":      "metamask",
		"message":        message,
		"signed_message": "0xdeadbeef",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication failed", stringField(t, parsed, "reason"))
}

func TestAuthRejectsMissingFieldsWith400(t *testing.T) {
	router := newTestRouter(t)

	rec, parsed := postAuth(t, router, map[string]string{"auth_type": "metamask"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "failure", stringField(t, parsed, "status"))
}

func TestProtectedAPIRejectsBadTokens(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
