package lcu

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credentials are the two lockfile fields the client actually needs:
// the local API port and the auth token. Name, pid and protocol are
// parsed and discarded.
type Credentials struct {
	Port  string
	Token string
}

// BasicAuth returns the "Basic <base64>" header value for the LCU's
// local HTTP API, which authenticates every request with the literal
// username "riot" and the lockfile token as password.
func (c Credentials) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("riot:"+c.Token))
}

// ParseLockfile parses the five colon-separated fields of a Riot
// lockfile: name:pid:port:token:protocol.
func ParseLockfile(contents string) (Credentials, error) {
	fields := strings.Split(strings.TrimSpace(contents), ":")
	if len(fields) != 5 {
		return Credentials{}, fmt.Errorf("lcu: malformed lockfile, expected 5 fields, got %d", len(fields))
	}
	return Credentials{Port: fields[2], Token: fields[3]}, nil
}

// DefaultLockfilePath returns the conventional League Client lockfile
// location for the current platform.
func DefaultLockfilePath() string {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return filepath.Join(dir, "Riot Games", "Riot Client", "Config", "lockfile")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Riot Games", "Riot Client", "Config", "lockfile")
}

// ReadCredentials reads and parses the lockfile at path. Callers
// treat a missing file as "client not running" rather than an error.
func ReadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, err
	}
	return ParseLockfile(string(data))
}
