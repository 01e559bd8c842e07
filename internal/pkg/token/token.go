// Package token generates the one-time values used by the verification
// workflow: short numeric codes typed by hand and opaque tokens embedded
// in links. Generation is pure; callers own storage and expiry.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NewNumericCode returns a 6-digit code sampled uniformly over
// 100000 to 999999. The offset keeps the first digit non-zero so the code
// survives being pasted into anything that strips leading zeros.
func NewNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewOpaque returns a 32-byte random token, base64url-encoded so it is safe
// to embed in a link without escaping.
func NewOpaque() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewRefreshToken generates a cryptographically random 64-character hex token.
func NewRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
