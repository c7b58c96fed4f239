package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/session"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault",
	Long:  `Initialize a new encrypted vault with a master password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password1, err := promptPassword("Enter master password")
		if err != nil {
			return err
		}
		defer crypto.Zeroize(password1)

		password2, err := promptPassword("Confirm master password")
		if err != nil {
			return err
		}
		defer crypto.Zeroize(password2)

		if !crypto.ConstantTimeCompare(password1, password2) {
			return fmt.Errorf("passwords do not match")
		}

		if err := sess.Setup(password1); err != nil {
			if errors.Is(err, session.ErrVaultExists) {
				return fmt.Errorf("vault already exists at %s. Use 'slvault reset' to destroy it first", cfg.VaultDir)
			}
			return fmt.Errorf("failed to initialize vault: %w", err)
		}

		if err := saveSession(cmdContext(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
		if err := cfg.SaveConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save config: %v\n", err)
		}

		fmt.Printf("Vault initialized (id %s)\n", sess.VaultID())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
