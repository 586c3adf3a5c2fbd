package tokenizer

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/hyprmtrx/hvm/core"
)

// SessionClaims combines standard claims with the identity snapshot a
// game backend needs
type SessionClaims struct {
	jwt.RegisteredClaims
	Handle      string                `json:"handle"`
	AuthWallets map[core.Chain]string `json:"auth_wallets"`
	Game        string                `json:"game"`
}
