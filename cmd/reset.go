package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/session"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Destroy the vault",
	Long: `Destroy the vault and every encrypted record in it. The data is
unrecoverable afterwards; the next 'slvault init' starts from nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sess.State() == session.StateNoVault {
			fmt.Println("No vault to reset")
			return nil
		}

		if !resetForce {
			fmt.Print("This permanently deletes all vault data. Type 'yes' to continue: ")
			reader := bufio.NewReader(os.Stdin)
			answer, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if strings.TrimSpace(answer) != "yes" {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := sess.Reset(); err != nil {
			return fmt.Errorf("failed to reset vault: %w", err)
		}
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clear session: %v\n", err)
		}

		fmt.Println("Vault destroyed")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
