package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// pkcsPrefix is the DER prefix for an uncompressed secp256k1 public key;
// Constellation hashes the full DER encoding when deriving an address.
const pkcsPrefix = "3056301006072a8648ce3d020106052b8104000a034200"

const dagAddressLen = 40

// generateDAG creates a fresh secp256k1 keypair and derives its
// Constellation (DAG) address.
func generateDAG() (address, privateKey string, err error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate dag keypair: %w", err)
	}
	pub := hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey))
	address, err = DAGAddressFromPublicKey(pub)
	if err != nil {
		return "", "", err
	}
	return address, hex.EncodeToString(crypto.FromECDSA(key)), nil
}

// DAGAddressFromPublicKey derives a DAG address from an uncompressed
// secp256k1 public key hex (with or without the 04 prefix): sha256 over
// the DER-prefixed key, base58, the last 36 chars, and a check digit
// that is the sum of the embedded decimal digits mod 9.
func DAGAddressFromPublicKey(publicKeyHex string) (string, error) {
	if len(publicKeyHex) == 128 {
		publicKeyHex = "04" + publicKeyHex
	}
	der, err := hex.DecodeString(pkcsPrefix + publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("malformed public key hex: %w", err)
	}

	digest := sha256.Sum256(der)
	encoded := base58.Encode(digest[:])
	end := encoded[len(encoded)-36:]

	sum := 0
	for _, c := range end {
		if c >= '0' && c <= '9' {
			sum += int(c - '0')
		}
	}
	return fmt.Sprintf("DAG%d%s", sum%9, end), nil
}

// ValidateDAGAddress checks an address against Constellation's canonical
// format rules: 40 chars, DAG prefix, a decimal check digit, and a
// 36-char base58 tail.
func ValidateDAGAddress(address string) bool {
	if len(address) != dagAddressLen {
		return false
	}
	if address[:3] != "DAG" {
		return false
	}
	if address[3] < '0' || address[3] > '9' {
		return false
	}
	tail := address[4:]
	if _, err := base58.Decode(tail); err != nil {
		return false
	}
	return true
}
