// Package config loads the process configuration once at startup.
// Components receive the values they need through constructors; nothing
// reads ambient process state after FromEnv returns.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/hyprmtrx/hvm/core"
)

// Network holds the per-chain connection settings
type Network struct {
	Name      string
	RPCURL    string
	FeeWallet string
}

// Config is the immutable process configuration. Construct it with
// FromEnv and pass it by reference; never mutate it after startup.
type Config struct {
	VaultSecret []byte // exactly 32 bytes, keys the private-key vault
	TokenSecret []byte // shared secret for session token signing

	ListenAddr string
	RedisURL   string
	GameAPIURL string

	Networks      map[core.Chain]Network
	DefaultChains []core.Chain
}

var defaultNetworks = map[core.Chain]Network{
	core.ChainETH: {
		Name:   "Ethereum",
		RPCURL: "https://mainnet.infura.io/v3/default",
	},
	core.ChainBNB: {
		Name:   "Binance Smart Chain",
		RPCURL: "https://bsc-dataseed.binance.org/",
	},
	core.ChainAVAX: {
		Name:   "Avalanche",
		RPCURL: "https://api.avax.network/ext/bc/C/rpc",
	},
	core.ChainBase: {
		Name:   "Base",
		RPCURL: "https://mainnet.base.org",
	},
	core.ChainDAG: {
		Name:   "Constellation",
		RPCURL: "https://l1-lb-mainnet.constellationnetwork.io",
	},
}

var rpcEnvKeys = map[core.Chain]string{
	core.ChainETH:  "RPC_URL_ETHEREUM",
	core.ChainBNB:  "RPC_URL_BNB",
	core.ChainAVAX: "RPC_URL_AVAX",
	core.ChainBase: "RPC_URL_BASE",
	core.ChainDAG:  "RPC_URL_DAG",
}

// FromEnv builds the configuration from environment variables. Any
// missing or malformed required value is a fatal startup error wrapping
// core.ErrConfig.
func FromEnv() (*Config, error) {
	vaultSecret, err := parseVaultSecret(os.Getenv("VAULT_ENCRYPTION_KEY"))
	if err != nil {
		return nil, err
	}

	tokenSecret := os.Getenv("JWT_SECRET")
	if tokenSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is not set", core.ErrConfig)
	}

	networks := make(map[core.Chain]Network, len(defaultNetworks))
	for chain, def := range defaultNetworks {
		net := def
		if url := os.Getenv(rpcEnvKeys[chain]); url != "" {
			net.RPCURL = url
		}
		if fee := os.Getenv("FEE_WALLET_" + strings.ToUpper(string(chain))); fee != "" {
			net.FeeWallet = fee
		}
		networks[chain] = net
	}

	chains, err := parseChains(os.Getenv("DEFAULT_CHAINS"), networks)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		VaultSecret:   vaultSecret,
		TokenSecret:   []byte(tokenSecret),
		ListenAddr:    envOr("LISTEN_ADDR", ":9000"),
		RedisURL:      envOr("REDIS_URL", "redis://localhost:6379/0"),
		GameAPIURL:    os.Getenv("GAME_API_URL"),
		Networks:      networks,
		DefaultChains: chains,
	}
	return cfg, nil
}

// Network returns the settings for a chain, or false when the chain is
// not configured.
func (c *Config) Network(chain core.Chain) (Network, bool) {
	net, ok := c.Networks[chain]
	return net, ok
}

func parseVaultSecret(raw string) ([]byte, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: VAULT_ENCRYPTION_KEY is not set", core.ErrConfig)
	}
	// 64 hex chars decode to the 32 raw bytes; anything else is taken verbatim
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: VAULT_ENCRYPTION_KEY must be 32 bytes or 64 hex chars, got %d bytes", core.ErrConfig, len(raw))
	}
	return []byte(raw), nil
}

func parseChains(raw string, networks map[core.Chain]Network) ([]core.Chain, error) {
	if raw == "" {
		return append([]core.Chain(nil), core.DefaultChains...), nil
	}
	var chains []core.Chain
	for _, part := range strings.Split(raw, ",") {
		chain := core.Chain(strings.TrimSpace(part))
		if chain == "" {
			continue
		}
		if _, ok := networks[chain]; !ok {
			return nil, fmt.Errorf("%w: unsupported chain %q in DEFAULT_CHAINS", core.ErrConfig, chain)
		}
		chains = append(chains, chain)
	}
	if len(chains) == 0 {
		return nil, fmt.Errorf("%w: DEFAULT_CHAINS is empty", core.ErrConfig)
	}
	return chains, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
