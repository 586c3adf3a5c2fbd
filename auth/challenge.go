package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hyprmtrx/hvm/core"
)

const messagePrefix = "Sign this message to authenticate with HyperMatrix: "

// ChallengeMessage renders the exact string a wallet must sign. Both
// challenge issuance and verification go through this one function; any
// divergence between the two call sites breaks verification.
func ChallengeMessage(address string, unixMillis int64) string {
	return fmt.Sprintf("%s%s - %d", messagePrefix, strings.ToLower(address), unixMillis)
}

// parseChallengeMessage extracts the embedded millisecond timestamp.
// The caller re-renders the message from it and requires exact equality,
// so a tampered message can only parse back to a string that no longer
// matches.
func parseChallengeMessage(message string) (unixMillis int64, ok bool) {
	idx := strings.LastIndex(message, " - ")
	if idx < 0 {
		return 0, false
	}
	millis, err := strconv.ParseInt(message[idx+3:], 10, 64)
	if err != nil {
		return 0, false
	}
	return millis, true
}

// ChallengeNonce extracts the freshness nonce (the embedded millisecond
// timestamp) from a rendered challenge message. Used to key single-use
// enforcement.
func ChallengeNonce(message string) (string, bool) {
	millis, ok := parseChallengeMessage(message)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(millis, 10), true
}

// NewChallenge issues a challenge for an address, stamped with the
// current time. Challenges are not persisted; the timestamp is the
// freshness nonce the verifier re-derives.
func NewChallenge(address string, now time.Time) core.Challenge {
	issued := now.Truncate(time.Millisecond)
	return core.Challenge{
		SubjectAddress: address,
		IssuedAt:       issued,
		Message:        ChallengeMessage(address, issued.UnixMilli()),
	}
}
