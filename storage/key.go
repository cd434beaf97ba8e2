package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// TokenFromEmail derives a deterministic, unguessable token from an email address.
// Uses HMAC-SHA256 with a secret salt so object names never expose addresses.
// The address is hashed byte-exact; case variants get different tokens.
func TokenFromEmail(salt []byte, email string) string {
	h := hmac.New(sha256.New, salt)
	h.Write([]byte(email))
	return hex.EncodeToString(h.Sum(nil))
}

// SubscriberKey generates a stable object name from a token.
// Returns "" unless the token is exactly 64 lowercase hex characters, which
// rules out path traversal.
func SubscriberKey(token string) string {
	if len(token) != 64 {
		return ""
	}

	// Check all characters, don't exit early.
	valid := 1
	for _, c := range token {
		isHexDigit := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHexDigit {
			valid = 0
		}
	}
	if valid == 0 {
		return ""
	}

	return fmt.Sprintf("sub-%s.json", token)
}
