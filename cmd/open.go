package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/crypto"
)

var openCmd = &cobra.Command{
	Use:   "open [token]",
	Short: "Decrypt a sealed token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword("Enter password")
		if err != nil {
			return err
		}
		defer crypto.Zeroize(password)

		plaintext, err := crypto.OpenToken(password, args[0])
		if err != nil {
			if errors.Is(err, crypto.ErrDecryptionAuth) {
				return fmt.Errorf("wrong password or tampered token")
			}
			if errors.Is(err, crypto.ErrMalformedToken) {
				return fmt.Errorf("malformed token")
			}
			return err
		}

		fmt.Println(string(plaintext))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
