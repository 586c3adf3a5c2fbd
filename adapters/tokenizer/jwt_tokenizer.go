// Package tokenizer implements the session token issuer on top of JWT.
package tokenizer

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/ports"
)

// AudienceSession marks tokens minted by this issuer
const AudienceSession = "hvm:session"

// JWTTokenizer signs session claims with a process-wide shared secret
// (HS256). The token is opaque to the holder and verifiable only by
// the issuer.
type JWTTokenizer struct {
	secret []byte
}

// NewJWTTokenizer creates a tokenizer keyed by the shared signing secret
func NewJWTTokenizer(secret []byte) ports.Tokenizer {
	return &JWTTokenizer{secret: secret}
}

// SessionToToken converts a session to a signed JWT
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Handle,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Handle:      session.Handle,
		AuthWallets: session.AuthWallets,
		Game:        session.Game,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signedToken, nil
}

// TokenToSession parses and validates a JWT back into a session.
// Expiry is enforced here, at verification time.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	session := &core.Session{
		Handle:      claims.Handle,
		AuthWallets: claims.AuthWallets,
		Game:        claims.Game,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}
	return session, nil
}
