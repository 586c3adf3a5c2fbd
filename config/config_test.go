package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyprmtrx/hvm/core"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VAULT_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_SECRET", "test-signing-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Len(t, cfg.VaultSecret, 32)
	assert.Equal(t, []byte("test-signing-secret"), cfg.TokenSecret)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, core.DefaultChains, cfg.DefaultChains)

	for _, chain := range core.DefaultChains {
		net, ok := cfg.Network(chain)
		require.True(t, ok, "chain %s must have a network", chain)
		assert.NotEmpty(t, net.RPCURL)
	}
}

func TestFromEnvHexVaultKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VAULT_ENCRYPTION_KEY", strings.Repeat("ab", 32))

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Len(t, cfg.VaultSecret, 32)
	assert.Equal(t, byte(0xab), cfg.VaultSecret[0])
}

func TestFromEnvRejectsMissingSecrets(t *testing.T) {
	t.Setenv("VAULT_ENCRYPTION_KEY", "")
	t.Setenv("JWT_SECRET", "x")
	_, err := FromEnv()
	assert.ErrorIs(t, err, core.ErrConfig)

	t.Setenv("VAULT_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_SECRET", "")
	_, err = FromEnv()
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestFromEnvRejectsShortVaultKey(t *testing.T) {
	setRequiredEnv(t)
	// 31 bytes: one short of a valid AES-256 key
	t.Setenv("VAULT_ENCRYPTION_KEY", strings.Repeat("a", 31))
	_, err := FromEnv()
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestFromEnvChainOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEFAULT_CHAINS", "ETH, DAG")
	t.Setenv("RPC_URL_ETHEREUM", "https://eth.example.test")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []core.Chain{core.ChainETH, core.ChainDAG}, cfg.DefaultChains)

	net, ok := cfg.Network(core.ChainETH)
	require.True(t, ok)
	assert.Equal(t, "https://eth.example.test", net.RPCURL)
}

func TestFromEnvRejectsUnknownChain(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEFAULT_CHAINS", "ETH,DOGE")
	_, err := FromEnv()
	assert.ErrorIs(t, err, core.ErrConfig)
}
