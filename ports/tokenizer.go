package ports

import "github.com/hyprmtrx/hvm/core"

// Tokenizer converts between sessions and signed bearer tokens
type Tokenizer interface {
	// SessionToToken mints a signed token from a session
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession parses and validates a token. A valid signature
	// with a passed expiry is core.ErrTokenExpired; everything else
	// that fails is core.ErrInvalidToken.
	TokenToSession(token string) (*core.Session, error)
}
