package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/cloud"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the vault with the cloud copy",
	Long: `Download the vault document from the cloud remote and replace the local
vault with it. The document is validated before anything is overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)

		remote, err := newRemote(ctx)
		if err != nil {
			return err
		}
		id, err := remoteID()
		if err != nil {
			return err
		}

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Pulling vault..."
		s.Start()
		bundle, err := cloud.Pull(ctx, remote, id)
		s.Stop()
		if err != nil {
			return err
		}

		if err := vaultStore.ImportBundle(ctx, bundle); err != nil {
			return fmt.Errorf("failed to import bundle: %w", err)
		}

		sess.Lock()
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clear session: %v\n", err)
		}

		fmt.Println("Vault pulled. Run 'slvault unlock' with the remote vault's master password.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
