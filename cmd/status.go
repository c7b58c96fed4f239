package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault status",
	RunE: func(cmd *cobra.Command, args []string) error {
		state := sess.State()
		if state == session.StateLocked && cache.Active(cmdContext(cmd)) {
			state = session.StateUnlocked
		}

		switch state {
		case session.StateNoVault:
			color.Yellow("No vault. Run 'slvault init' to create one.")
		case session.StateLocked:
			color.Red("Vault: locked")
		case session.StateUnlocked:
			color.Green("Vault: unlocked")
		}

		if id := sess.VaultID(); id != "" {
			fmt.Printf("Vault id: %s\n", id)
		}
		fmt.Printf("Storage:  %s\n", cfg.VaultDir)
		if cfg.TableName != "" {
			fmt.Printf("Cloud:    %s (%s)\n", cfg.TableName, cfg.AWSRegion)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
