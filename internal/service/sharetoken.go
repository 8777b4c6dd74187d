package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ShareTokenLength is the fixed length of share tokens. Tokens are drawn
// from crypto/rand over a hex alphabet, so two tasks never race into the
// same token in practice (48 bits of entropy).
const ShareTokenLength = 12

func NewShareToken() (string, error) {
	buf := make([]byte, ShareTokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
