package core

import "time"

// CustodyWallet is the public half of a wallet provisioned for an identity
type CustodyWallet struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// Identity binds a player handle to the wallet addresses used to
// authenticate and the custodial wallets provisioned on their behalf
type Identity struct {
	Handle         string           `json:"handle"`          // unique, immutable once claimed
	AuthWallets    map[Chain]string `json:"auth_wallets"`    // chain -> externally-owned address
	CustodyWallets []CustodyWallet  `json:"custody_wallets"` // public data only
	CreatedAt      time.Time        `json:"created_at"`
}

// KeyRecord is an encrypted custody private key. It never leaves the
// vault/store boundary and never carries plaintext key material.
type KeyRecord struct {
	Chain               Chain  `json:"chain"`
	Address             string `json:"address"`
	EncryptedPrivateKey string `json:"encrypted_private_key"`
}
