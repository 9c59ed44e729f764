package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential_file.xml")
	cred := Credential{Username: "admin@vsphere.local", Password: "s3cret!"}

	require.NoError(t, Save(path, "passphrase", cred))

	loaded, err := Load(path, "passphrase")
	require.NoError(t, err)
	require.Equal(t, cred, loaded)
}

func TestSaveDoesNotStorePlaintextPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential_file.xml")
	require.NoError(t, Save(path, "passphrase", Credential{Username: "admin", Password: "hunter2"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "hunter2")
	require.True(t, strings.Contains(string(raw), "<username>admin</username>"))
}

func TestLoadWrongPassphraseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential_file.xml")
	require.NoError(t, Save(path, "right", Credential{Username: "admin", Password: "pw"}))

	_, err := Load(path, "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decrypt")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "credential_file.xml"), "passphrase")
	require.Error(t, err)
}

func TestLoadEmptyPassphraseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential_file.xml")
	require.NoError(t, Save(path, "passphrase", Credential{Username: "admin", Password: "pw"}))

	_, err := Load(path, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "passphrase")
}

func TestLoadGarbageFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential_file.xml")
	require.NoError(t, os.WriteFile(path, []byte("not xml at all"), 0600))

	_, err := Load(path, "passphrase")
	require.Error(t, err)
}
