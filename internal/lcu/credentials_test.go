package lcu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLockfileExtractsPortAndToken(t *testing.T) {
	creds, err := ParseLockfile("LeagueClient:12345:54321:some-token-value:https")

	require.NoError(t, err)
	assert.Equal(t, "54321", creds.Port)
	assert.Equal(t, "some-token-value", creds.Token)
}

func TestParseLockfileRejectsWrongFieldCount(t *testing.T) {
	_, err := ParseLockfile("too:few:fields")
	assert.Error(t, err)
}

func TestBasicAuthEncodesRiotUsername(t *testing.T) {
	creds := Credentials{Token: "abc123"}
	assert.Equal(t, "Basic cmlvdDphYmMxMjM=", creds.BasicAuth())
}

func TestReadCredentialsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockfile")
	require.NoError(t, os.WriteFile(path, []byte("LeagueClient:1:9999:tok:https"), 0o644))

	creds, err := ReadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "9999", creds.Port)
	assert.Equal(t, "tok", creds.Token)
}

func TestReadCredentialsMissingFile(t *testing.T) {
	_, err := ReadCredentials(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
