package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slvault/slvault/internal/vault"
)

var contactPhone string

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage encrypted contacts",
}

var contactAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}
		ctx := cmdContext(cmd)

		contacts, err := vaultStore.LoadContacts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}

		contact := vault.NewContact(args[0], contactPhone)
		contacts = append(contacts, contact)
		if err := vaultStore.SaveContacts(ctx, contacts); err != nil {
			return fmt.Errorf("failed to save contacts: %w", err)
		}

		fmt.Printf("Contact %s added\n", contact.ID)
		return nil
	},
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}

		contacts, err := vaultStore.LoadContacts(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}
		if len(contacts) == 0 {
			fmt.Println("No contacts")
			return nil
		}

		for _, contact := range contacts {
			fmt.Printf("%-36s  %-20s", contact.ID, contact.Name)
			if contact.Phone != "" {
				fmt.Printf("  %s", contact.Phone)
			}
			fmt.Printf("  added %s\n", time.UnixMilli(contact.CreatedAt).Format("2006-01-02"))
		}
		return nil
	},
}

var contactRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}
		ctx := cmdContext(cmd)

		contacts, err := vaultStore.LoadContacts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}

		kept := contacts[:0]
		for _, contact := range contacts {
			if contact.ID != args[0] {
				kept = append(kept, contact)
			}
		}
		if len(kept) == len(contacts) {
			return fmt.Errorf("contact %s not found", args[0])
		}

		if err := vaultStore.SaveContacts(ctx, kept); err != nil {
			return fmt.Errorf("failed to save contacts: %w", err)
		}
		fmt.Println("Contact removed")
		return nil
	},
}

func init() {
	contactAddCmd.Flags().StringVarP(&contactPhone, "phone", "p", "", "contact phone number")
	contactCmd.AddCommand(contactAddCmd)
	contactCmd.AddCommand(contactListCmd)
	contactCmd.AddCommand(contactRemoveCmd)
	rootCmd.AddCommand(contactCmd)
}
