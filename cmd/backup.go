package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Export the vault to an encrypted bundle file",
	Long: `Export the vault to a bundle file. The bundle carries the salt and the
encrypted blobs as-is; it can only be read again with the master password.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := vaultStore.ExportBundle(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to export vault: %w", err)
		}

		data, err := backup.Encode(bundle)
		if err != nil {
			return fmt.Errorf("failed to serialize bundle: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0600); err != nil {
			return fmt.Errorf("failed to write backup file: %w", err)
		}

		fmt.Printf("Vault exported to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
