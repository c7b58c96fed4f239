package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/vault"
)

var historyConversation string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a conversation",
	Long:  `Decrypt and print a conversation's messages in creation order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}

		messages, err := vaultStore.LoadConversation(cmdContext(cmd), historyConversation)
		if err != nil {
			return fmt.Errorf("failed to load conversation: %w", err)
		}
		if len(messages) == 0 {
			fmt.Println("No messages")
			return nil
		}

		role := color.New(color.FgCyan, color.Bold)
		for _, msg := range messages {
			ts := time.UnixMilli(msg.CreatedAt).Format("2006-01-02 15:04:05")
			role.Printf("%-6s", msg.Role)
			fmt.Printf(" %s  %s", ts, msg.Content)
			if msg.Kind == vault.KindAudio {
				fmt.Printf(" [audio, %d bytes]", len(msg.Media))
			}
			if msg.ExpiresAt != 0 {
				fmt.Printf("  (expires %s)", time.UnixMilli(msg.ExpiresAt).Format("2006-01-02 15:04:05"))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyConversation, "conversation", "c", "", "conversation to show (default global)")
	rootCmd.AddCommand(historyCmd)
}
