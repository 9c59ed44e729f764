package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialCommandPrintsItsErrors(t *testing.T) {
	// SilenceErrors on the root command suppresses cobra's own error
	// printing; a failed credential run must still say what went wrong.
	t.Setenv("VMATTR_CREDENTIAL_KEY", "")

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{
		"credential",
		"--username", "admin",
		filepath.Join(t.TempDir(), "credential_file.xml"),
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, stderr.String(), "VMATTR_CREDENTIAL_KEY")
}
