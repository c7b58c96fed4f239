package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vault",
	Long:  `Lock the vault and discard the cached session key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess.Lock()
		if err := cache.Clear(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Println("Vault locked")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
}
