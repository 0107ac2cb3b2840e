package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/inkwell/blog-backend/internal/common/constants"
)

// GenerateOpaqueToken returns a random URL-safe token for refresh flows.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, constants.RefreshTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 digest of a token. Only the digest is
// persisted, so a leaked database copy cannot be replayed.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
