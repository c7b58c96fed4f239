package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/backup"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace the vault with a bundle file",
	Long: `Replace the vault's contents with a previously exported bundle. The
bundle is validated before anything is overwritten; a bad bundle leaves the
vault untouched. The session is locked afterwards because the bundle's salt
may not match the current key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup file: %w", err)
		}
		bundle, err := backup.Decode(data)
		if err != nil {
			return err
		}

		if err := vaultStore.ImportBundle(cmdContext(cmd), bundle); err != nil {
			return fmt.Errorf("failed to import bundle: %w", err)
		}

		sess.Lock()
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clear session: %v\n", err)
		}

		fmt.Println("Vault restored. Run 'slvault unlock' with the bundle's master password.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
