package core

import "time"

// Challenge represents an authentication challenge. Challenges are not
// persisted: the verifier re-derives the message from the subject address
// and the nonce embedded in it.
type Challenge struct {
	SubjectAddress string    // wallet address the challenge is issued for
	IssuedAt       time.Time // freshness token embedded in the message
	Message        string    // the exact string the wallet must sign
}

// Session represents an authenticated player session scoped to a game
type Session struct {
	Handle      string           // player handle the token is bound to
	AuthWallets map[Chain]string // snapshot of the authenticating addresses
	Game        string           // requesting game / network context
	IssuedAt    time.Time        // when the session was minted
	ExpiresAt   time.Time        // enforced at verification time
}
