package main

import (
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the providers the bridge supports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.ListProviders(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage bridge profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var profilesCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the currently selected profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.GetCurrentProfile(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create <name> <provider>",
	Short: "Create a profile for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.CreateProfile(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var profilesSwitchCmd = &cobra.Command{
	Use:   "switch <profile-id>",
	Short: "Make a profile current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.SwitchProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.DeleteProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

func init() {
	profilesCmd.AddCommand(
		profilesListCmd,
		profilesCurrentCmd,
		profilesCreateCmd,
		profilesSwitchCmd,
		profilesDeleteCmd,
	)
	rootCmd.AddCommand(providersCmd, profilesCmd)
}
