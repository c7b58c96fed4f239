package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/slvault/slvault/internal/cloud"
	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/session"
)

func cmdContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(label string) ([]byte, error) {
	fmt.Printf("%s: ", label)
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return password, nil
}

// ensureUnlocked unlocks the session from the cached key if one is live,
// otherwise prompts for the master password.
func ensureUnlocked(cmd *cobra.Command) error {
	if sess.State() == session.StateUnlocked {
		return nil
	}
	if sess.State() == session.StateNoVault {
		return fmt.Errorf("vault not found. Run 'slvault init' first")
	}

	ctx := cmdContext(cmd)
	if key, err := cache.Load(ctx); err == nil {
		if err := sess.Resume(key); err == nil {
			return nil
		}
		// The cached key no longer matches the vault, e.g. after a
		// restore. Drop it and fall through to the prompt.
		crypto.Zeroize(key)
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clear stale session: %v\n", err)
		}
	}

	password, err := promptPassword("Enter master password")
	if err != nil {
		return err
	}
	defer crypto.Zeroize(password)

	if err := sess.Unlock(password); err != nil {
		if errors.Is(err, session.ErrWrongPassword) {
			return fmt.Errorf("wrong master password")
		}
		return fmt.Errorf("failed to unlock vault: %w", err)
	}

	if err := saveSession(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
	}
	return nil
}

// saveSession caches the live vault key for future invocations.
func saveSession(ctx context.Context) error {
	key, err := sess.Key()
	if err != nil {
		return err
	}
	return cache.Save(ctx, key)
}

// newRemote creates the configured cloud remote.
func newRemote(ctx context.Context) (cloud.Remote, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("no cloud table configured. Set table_name in %s", cfg.ConfigPath)
	}
	return cloud.NewDynamoRemote(ctx, cfg.TableName, cfg.AWSRegion)
}

// remoteID returns the identifier the vault lives under in the cloud.
func remoteID() (string, error) {
	if cfg.RemoteID != "" {
		return cfg.RemoteID, nil
	}
	if id := sess.VaultID(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no remote id configured and no local vault id available")
}
