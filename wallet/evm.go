package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// generateEVM creates a fresh secp256k1 keypair and returns the
// checksummed address and the 0x-prefixed private key hex. Base, ETH,
// BNB and AVAX all share this format; each call draws independent
// entropy, so no two chains ever share a key.
func generateEVM() (address, privateKey string, err error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate evm keypair: %w", err)
	}
	address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	privateKey = hexutil.Encode(crypto.FromECDSA(key))
	return address, privateKey, nil
}
