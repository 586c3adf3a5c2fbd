package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyprmtrx/hvm/core"
)

func TestProvisionDefaultChains(t *testing.T) {
	p := NewProvisioner(nil)

	res := p.Provision("tester", core.DefaultChains)
	require.Len(t, res.Wallets, 5)
	require.Empty(t, res.Skipped)

	seenKeys := make(map[string]bool)
	for _, w := range res.Wallets {
		require.NotEmpty(t, w.Address, "chain %s", w.Chain)
		require.NotEmpty(t, w.PrivateKey, "chain %s", w.Chain)

		if w.Chain.IsEVM() {
			assert.True(t, common.IsHexAddress(w.Address), "chain %s address %s", w.Chain, w.Address)
		} else {
			assert.True(t, ValidateDAGAddress(w.Address), "dag address %s", w.Address)
		}

		// no shared entropy across chains
		assert.False(t, seenKeys[w.PrivateKey])
		seenKeys[w.PrivateKey] = true
	}
}

func TestProvisionSkipsUnsupportedChain(t *testing.T) {
	p := NewProvisioner(nil)

	res := p.Provision("tester", []core.Chain{core.ChainETH, "DOGE"})
	require.Len(t, res.Wallets, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, core.Chain("DOGE"), res.Skipped[0].Chain)
	assert.Equal(t, "unsupported chain", res.Skipped[0].Reason)
}

func TestProvisionIndependentAcrossCalls(t *testing.T) {
	p := NewProvisioner(nil)

	first := p.Provision("a", []core.Chain{core.ChainETH})
	second := p.Provision("b", []core.Chain{core.ChainETH})
	require.Len(t, first.Wallets, 1)
	require.Len(t, second.Wallets, 1)
	assert.NotEqual(t, first.Wallets[0].Address, second.Wallets[0].Address)
	assert.NotEqual(t, first.Wallets[0].PrivateKey, second.Wallets[0].PrivateKey)
}

func TestPublicProjectionDropsPrivateKeys(t *testing.T) {
	p := NewProvisioner(nil)

	res := p.Provision("tester", []core.Chain{core.ChainETH, core.ChainDAG})
	public := res.Public()
	require.Len(t, public, 2)
	for i, w := range public {
		assert.Equal(t, res.Wallets[i].Chain, w.Chain)
		assert.Equal(t, res.Wallets[i].Address, w.Address)
	}
}
