package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vmattr/internal/config"
	"vmattr/internal/credentials"
)

var credentialUser string

var credentialCmd = &cobra.Command{
	Use:   "credential <path>",
	Short: "Write an encrypted credential_file.xml",
	Long: `credential prompts for a password and writes the encrypted credential
file the run expects next to its input CSV. The encryption passphrase
is taken from the same environment variable the run reads it from.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeCredentialFile(cmd, args[0]); err != nil {
			cmd.PrintErrln(err)
			return err
		}
		return nil
	},
}

func writeCredentialFile(cmd *cobra.Command, path string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return err
	}

	passphrase := os.Getenv(cfg.Core.CredentialKeyEnv)
	if passphrase == "" {
		return errors.Errorf("environment variable %s is not set", cfg.Core.CredentialKeyEnv)
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", credentialUser)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return errors.Wrap(err, "failed to read password")
	}

	cred := credentials.Credential{Username: credentialUser, Password: string(password)}
	if err := credentials.Save(path, passphrase, cred); err != nil {
		return err
	}

	cmd.Printf("Wrote %s\n", path)
	return nil
}

func init() {
	credentialCmd.Flags().StringVar(&credentialUser, "username", "", "vCenter username to store")
	credentialCmd.MarkFlagRequired("username")
}
