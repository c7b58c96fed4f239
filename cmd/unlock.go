package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/session"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the vault",
	Long:  `Unlock the vault by providing the master password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		if cache.Active(ctx) {
			fmt.Println("Vault is already unlocked")
			return nil
		}

		password, err := promptPassword("Enter master password")
		if err != nil {
			return err
		}
		defer crypto.Zeroize(password)

		if err := sess.Unlock(password); err != nil {
			if errors.Is(err, session.ErrNoVault) {
				return fmt.Errorf("vault not found. Run 'slvault init' first")
			}
			if errors.Is(err, session.ErrWrongPassword) {
				return fmt.Errorf("wrong master password")
			}
			return fmt.Errorf("failed to unlock vault: %w", err)
		}

		if err := saveSession(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}

		fmt.Println("Vault unlocked successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}
