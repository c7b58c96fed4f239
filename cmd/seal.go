package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/crypto"
)

var sealCmd = &cobra.Command{
	Use:   "seal [text]",
	Short: "Encrypt text into a self-contained token",
	Long: `Encrypt text into a portable token that carries its own salt and can be
opened anywhere with 'slvault open' and the same password. The token is
independent of any vault. Reads stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var plaintext []byte
		if len(args) > 0 {
			plaintext = []byte(args[0])
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			plaintext = data
		}

		password, err := promptPassword("Enter password")
		if err != nil {
			return err
		}
		defer crypto.Zeroize(password)

		token, err := crypto.SealToken(password, plaintext)
		if err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sealCmd)
}
