package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	profileName  string
	profileAbout string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the encrypted profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}

		profile, err := vaultStore.LoadProfile(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if profile.DisplayName == "" && profile.About == "" {
			fmt.Println("No profile set")
			return nil
		}

		fmt.Printf("Name:  %s\n", profile.DisplayName)
		if profile.About != "" {
			fmt.Printf("About: %s\n", profile.About)
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("about") {
			return fmt.Errorf("nothing to set: provide --name or --about")
		}
		if err := ensureUnlocked(cmd); err != nil {
			return err
		}
		ctx := cmdContext(cmd)

		profile, err := vaultStore.LoadProfile(ctx)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if cmd.Flags().Changed("name") {
			profile.DisplayName = profileName
		}
		if cmd.Flags().Changed("about") {
			profile.About = profileAbout
		}

		if err := vaultStore.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		fmt.Println("Profile updated")
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileSetCmd.Flags().StringVar(&profileAbout, "about", "", "about text")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
