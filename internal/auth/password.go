package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. The salt is fed to the KDF in its hex form so stored
// strings stay interchangeable with hashes already stored in the users table.
const (
	scryptN       = 16384
	scryptR       = 8
	scryptP       = 1
	keyLen        = 64
	saltLen       = 16
	hashSeparator = "."
)

// HashPassword derives "<hexHash>.<hexSalt>" from password with a fresh salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: read salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key, err := deriveKey(password, saltHex)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + hashSeparator + saltHex, nil
}

// VerifyPassword reports whether password matches stored. Malformed stored
// values never match.
func VerifyPassword(password, stored string) bool {
	hashHex, saltHex, ok := strings.Cut(stored, hashSeparator)
	if !ok || hashHex == "" || saltHex == "" || strings.Contains(saltHex, hashSeparator) {
		return false
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil || len(want) != keyLen {
		return false
	}
	got, err := deriveKey(password, saltHex)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, got) == 1
}

func deriveKey(password, saltHex string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("auth: scrypt: %w", err)
	}
	return key, nil
}
