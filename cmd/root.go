package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/config"
	"github.com/slvault/slvault/internal/secrets"
	"github.com/slvault/slvault/internal/session"
	"github.com/slvault/slvault/internal/storage"
	"github.com/slvault/slvault/internal/store"
)

var (
	cfg        *config.Config
	backend    storage.Backend
	sess       *session.Session
	vaultStore *store.Store
	cache      *session.Cache
	logger     *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slvault",
	Short: "A local-first encrypted data vault",
	Long: `slvault keeps conversations, contacts and a profile encrypted at rest
under a key derived from your master password. All encryption and decryption
happens locally; backups and the cloud remote only ever carry ciphertext.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	level := slog.LevelWarn
	if os.Getenv("SLVAULT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend, err = storage.NewFileBackend(cfg.VaultDir)
	if err != nil {
		return fmt.Errorf("failed to open vault directory: %w", err)
	}
	sess = session.New(backend)
	vaultStore = store.New(backend, sess, logger)

	// The escrow is optional; without AWS the cache falls back to a
	// machine-local wrapping key.
	var escrow session.KeySource
	if cfg.SessionSecretName != "" {
		e, err := secrets.NewEscrow(context.Background(), cfg.SessionSecretName, cfg.AWSRegion)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: session escrow not available: %v\n", err)
		} else {
			escrow = e
		}
	}
	cache = session.NewCache(cfg.GetSessionPath(), cfg.SessionTimeout(), escrow)

	return rootCmd.Execute()
}
