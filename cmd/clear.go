package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/vault"
)

var clearConversation string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a conversation's messages",
	Long: `Delete every message of one conversation. Other conversations are
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}

		if err := vaultStore.ClearConversation(cmdContext(cmd), clearConversation); err != nil {
			return fmt.Errorf("failed to clear conversation: %w", err)
		}

		name := clearConversation
		if name == "" {
			name = vault.GlobalConversation
		}
		fmt.Printf("Conversation %s cleared\n", name)
		return nil
	},
}

func init() {
	clearCmd.Flags().StringVarP(&clearConversation, "conversation", "c", "", "conversation to clear (default global)")
	rootCmd.AddCommand(clearCmd)
}
