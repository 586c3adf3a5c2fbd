package core

// Chain identifies a supported blockchain network
type Chain string

const (
	ChainBase Chain = "Base"
	ChainDAG  Chain = "DAG"
	ChainETH  Chain = "ETH"
	ChainBNB  Chain = "BNB"
	ChainAVAX Chain = "AVAX"
)

// DefaultChains is the chain set provisioned for every new identity
var DefaultChains = []Chain{ChainBase, ChainDAG, ChainETH, ChainBNB, ChainAVAX}

// IsEVM reports whether the chain uses Ethereum-style keys and addresses
func (c Chain) IsEVM() bool {
	switch c {
	case ChainBase, ChainETH, ChainBNB, ChainAVAX:
		return true
	}
	return false
}

// Scheme identifies the wallet authentication method
type Scheme string

const (
	// SchemeExternalSignature is browser-wallet personal-message signing
	// (MetaMask and compatible EVM wallets)
	SchemeExternalSignature Scheme = "metamask"

	// SchemeAddressProof is Constellation address-format validation
	// (Stargazer wallets, no signature involved)
	SchemeAddressProof Scheme = "stargazer"
)

// AuthChain returns the chain an authenticating address for this scheme
// lives on.
func (s Scheme) AuthChain() Chain {
	if s == SchemeAddressProof {
		return ChainDAG
	}
	return ChainETH
}

// ParseScheme maps a caller-supplied auth_type tag to a Scheme
func ParseScheme(tag string) (Scheme, bool) {
	switch Scheme(tag) {
	case SchemeExternalSignature:
		return SchemeExternalSignature, true
	case SchemeAddressProof:
		return SchemeAddressProof, true
	}
	return "", false
}
