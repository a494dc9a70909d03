// Package pairing guards the local control API to the one GUI process
// that holds the pairing secret written next to the lockfile-style
// auth file at startup. Adapted from internal/auth.AuthService's
// bcrypt hashing (same cost factor, same GenerateRandomString shape)
// but scoped to a single secret instead of a multi-user session map,
// since this process serves exactly one local GUI client.
package pairing

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Secret is the plaintext pairing token handed to the GUI once, and
// its bcrypt hash persisted to disk for verification on later starts.
type Secret struct {
	Plaintext string
	Hash      string
}

type file struct {
	Hash string `json:"hash"`
}

// LoadOrCreate reads the persisted pairing hash at path, or generates
// a fresh secret and persists its hash if none exists yet. The
// plaintext is only ever returned on the call that generates it.
func LoadOrCreate(path string) (Secret, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var f file
		if err := json.Unmarshal(data, &f); err != nil {
			return Secret{}, fmt.Errorf("pairing: decode %s: %w", path, err)
		}
		return Secret{Hash: f.Hash}, nil
	}
	if !os.IsNotExist(err) {
		return Secret{}, fmt.Errorf("pairing: read %s: %w", path, err)
	}

	plaintext, genErr := randomToken(32)
	if genErr != nil {
		return Secret{}, genErr
	}
	hashBytes, hashErr := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if hashErr != nil {
		return Secret{}, hashErr
	}
	hash := string(hashBytes)
	data, marshalErr := json.Marshal(file{Hash: hash})
	if marshalErr != nil {
		return Secret{}, marshalErr
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Secret{}, fmt.Errorf("pairing: write %s: %w", path, err)
	}
	return Secret{Plaintext: plaintext, Hash: hash}, nil
}

// Verify checks a candidate token against the persisted hash.
func Verify(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("pairing: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
