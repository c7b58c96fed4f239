package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/vault"
)

var (
	sendConversation string
	sendRole         string
	sendTTL          time.Duration
	sendAudioPath    string
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Append a message to a conversation",
	Long: `Append a message to a conversation. With --ttl the message expires and
is pruned on a later load or sweep; without it the message is kept forever.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && sendAudioPath == "" {
			return fmt.Errorf("nothing to send: provide a message or --audio")
		}
		switch vault.Role(sendRole) {
		case vault.RoleUser, vault.RoleModel, vault.RoleSystem:
		default:
			return fmt.Errorf("unknown role %q", sendRole)
		}
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}
		ctx := cmdContext(cmd)

		content := ""
		if len(args) > 0 {
			content = args[0]
		}

		ttl := sendTTL
		if !cmd.Flags().Changed("ttl") {
			ttl = cfg.DefaultTTL()
		}

		msg := vault.NewMessage(vault.Role(sendRole), content, sendConversation, ttl)
		if sendAudioPath != "" {
			media, err := os.ReadFile(sendAudioPath)
			if err != nil {
				return fmt.Errorf("failed to read audio file: %w", err)
			}
			msg = msg.WithMedia(media)
		}

		messages, err := vaultStore.LoadConversation(ctx, sendConversation)
		if err != nil {
			return fmt.Errorf("failed to load conversation: %w", err)
		}
		messages = append(messages, msg)
		if err := vaultStore.SaveConversation(ctx, sendConversation, messages); err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}

		fmt.Printf("Message %s saved\n", msg.ID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendConversation, "conversation", "c", "", "conversation to append to (default global)")
	sendCmd.Flags().StringVarP(&sendRole, "role", "r", string(vault.RoleUser), "message role (user, model, system)")
	sendCmd.Flags().DurationVar(&sendTTL, "ttl", 0, "message lifetime, e.g. 24h (0 keeps forever)")
	sendCmd.Flags().StringVar(&sendAudioPath, "audio", "", "attach an audio file")
	rootCmd.AddCommand(sendCmd)
}
