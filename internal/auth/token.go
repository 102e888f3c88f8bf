package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the hex digest stored in place of a refresh token.
// Raw tokens never touch the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
