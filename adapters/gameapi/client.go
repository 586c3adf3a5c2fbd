// Package gameapi pushes custody wallet balances to the downstream
// game API after a successful sign-in or registration. The engine only
// hands over the public {handle, custody wallets} pair; balances are
// read straight from the chains.
package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/hyprmtrx/hvm/config"
	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/ports"
)

// WalletBalance is one custody wallet's native balance
type WalletBalance struct {
	Chain   core.Chain      `json:"chain"`
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

type balancePayload struct {
	Handle   string          `json:"handle"`
	Game     string          `json:"game"`
	Balances []WalletBalance `json:"balances"`
}

// Client reports balances to the game API. EVM chains are queried over
// their configured RPC endpoints, dialed lazily and reused; chains
// without an RPC client report zero.
type Client struct {
	apiURL   string
	networks map[core.Chain]config.Network
	httpc    *http.Client
	log      *slog.Logger

	mu      sync.Mutex
	clients map[core.Chain]*ethclient.Client
}

// NewClient creates a reporter for the configured game API endpoint
func NewClient(apiURL string, networks map[core.Chain]config.Network, log *slog.Logger) ports.BalanceReporter {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiURL:   apiURL,
		networks: networks,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		log:      log,
		clients:  make(map[core.Chain]*ethclient.Client),
	}
}

// Report reads each custody wallet's native balance and POSTs the
// result to the game API.
func (c *Client) Report(ctx context.Context, handle, game string, wallets []core.CustodyWallet) error {
	if c.apiURL == "" {
		return nil
	}

	payload := balancePayload{
		Handle:   handle,
		Game:     game,
		Balances: make([]WalletBalance, 0, len(wallets)),
	}
	for _, w := range wallets {
		payload.Balances = append(payload.Balances, WalletBalance{
			Chain:   w.Chain,
			Address: w.Address,
			Amount:  c.balanceOf(ctx, w),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal balance payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build balance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send balances: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("game api rejected balances: status %d", resp.StatusCode)
	}
	return nil
}

// balanceOf reads a wallet's native balance, in whole coins. Lookup
// failures degrade to zero; a missing balance must not block sign-in.
func (c *Client) balanceOf(ctx context.Context, wallet core.CustodyWallet) decimal.Decimal {
	if !wallet.Chain.IsEVM() {
		return decimal.Zero
	}

	client, err := c.ethClient(ctx, wallet.Chain)
	if err != nil {
		c.log.Warn("rpc dial failed, reporting zero balance", "chain", wallet.Chain, "error", err)
		return decimal.Zero
	}

	wei, err := client.BalanceAt(ctx, common.HexToAddress(wallet.Address), nil)
	if err != nil {
		c.log.Warn("balance lookup failed, reporting zero", "chain", wallet.Chain, "address", wallet.Address, "error", err)
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18)
}

func (c *Client) ethClient(ctx context.Context, chain core.Chain) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[chain]; ok {
		return client, nil
	}

	net, ok := c.networks[chain]
	if !ok || net.RPCURL == "" {
		return nil, fmt.Errorf("no rpc endpoint configured for %s", chain)
	}

	client, err := ethclient.DialContext(ctx, net.RPCURL)
	if err != nil {
		return nil, err
	}
	c.clients[chain] = client
	return client, nil
}
