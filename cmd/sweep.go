package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/sweeper"
)

var (
	sweepConversation string
	sweepWatch        bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Prune expired messages",
	Long: `Prune messages past their TTL from a conversation. A plain sweep runs
once; --watch keeps the conversation loaded and prunes on an interval until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}
		ctx := cmdContext(cmd)

		// Loading already prunes and compacts anything past its TTL.
		messages, err := vaultStore.LoadConversation(ctx, sweepConversation)
		if err != nil {
			return fmt.Errorf("failed to load conversation: %w", err)
		}
		if !sweepWatch {
			fmt.Printf("Swept. %d live messages remain\n", len(messages))
			return nil
		}

		w := sweeper.New(vaultStore, sweepConversation, cfg.SweepInterval(), logger)
		w.SetMessages(messages)
		w.Start(ctx)
		defer w.Stop()

		fmt.Println("Sweeping. Press Ctrl-C to stop.")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-ctx.Done():
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepConversation, "conversation", "c", "", "conversation to sweep (default global)")
	sweepCmd.Flags().BoolVarP(&sweepWatch, "watch", "w", false, "keep sweeping until interrupted")
	rootCmd.AddCommand(sweepCmd)
}
