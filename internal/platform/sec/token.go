// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a cryptographically random hex token of
// byteLength entropy bytes (the string is twice as long).
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashToken derives the storage form of an opaque token. Only the hash is
// persisted, so a leaked session store cannot be replayed.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
