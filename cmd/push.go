package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/cloud"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the vault to the cloud remote",
	Long: `Upload the vault as an opaque encrypted document. The remote never sees
the master password or any plaintext.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)

		bundle, err := vaultStore.ExportBundle(ctx)
		if err != nil {
			return fmt.Errorf("failed to export vault: %w", err)
		}
		remote, err := newRemote(ctx)
		if err != nil {
			return err
		}
		id, err := remoteID()
		if err != nil {
			return err
		}

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Pushing vault..."
		s.Start()
		err = cloud.Push(ctx, remote, bundle, id)
		s.Stop()
		if err != nil {
			return err
		}

		fmt.Printf("Vault pushed as %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
