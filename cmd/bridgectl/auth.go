package main

import (
	"fmt"

	"github.com/spf13/cobra"

	bridge "github.com/wagiedev/provider-bridge-go"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect and manage provider authentication",
}

var authCheckCmd = &cobra.Command{
	Use:   "check <provider> <profile-name>",
	Short: "Check whether stored credentials are valid",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.CheckAuth(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var authOptionsCmd = &cobra.Command{
	Use:   "options <profile-name> <provider>",
	Short: "Show the authentication options for a profile and provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.GetAuthOptions(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login <profile-name> <provider> <api-key>",
	Short: "Store an API key credential for a profile",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.LoginWithAPIKey(cmd.Context(), args[0], args[1], args[2], nil)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var authLinkCmd = &cobra.Command{
	Use:   "link <profile-name> <provider>",
	Short: "Link credentials already on this machine to a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.LinkExistingCredential(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var authTerminalCmd = &cobra.Command{
	Use:   "terminal <provider>",
	Short: "Start the provider's native login flow in a terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		// Fire-and-forget; does not go through the bridge transport.
		msg, err := bridge.TriggerProviderLogin(logger(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(msg)

		return nil
	},
}

func init() {
	authCmd.AddCommand(authCheckCmd, authOptionsCmd, authLoginCmd, authLinkCmd, authTerminalCmd)
	rootCmd.AddCommand(authCmd)
}
