package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	bridge "github.com/wagiedev/provider-bridge-go"
)

var (
	flagProfile  string
	flagProvider string
)

// providerEvent is the subset of the streamed event payload bridgectl
// cares about. The bridge emits text, progress, error, and done events
// among others.
type providerEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Message string `json:"message"`
}

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a message and stream the provider's reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sink := bridge.NewDispatcher(logger())

		client, err := newClient(sink)
		if err != nil {
			return err
		}
		defer client.Close()

		// Subscribe before sending so no event can slip past.
		token, events := sink.Subscribe()
		defer sink.Unsubscribe(token)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		// Launch is idempotent on the bridge side; an already-running
		// session reports an error that is safe to ignore.
		if _, err := client.Launch(ctx, flagProfile, flagProvider, bridge.LaunchConfig{
			ProfileName:    flagProfile,
			WorkingDir:     cwd,
			PermissionMode: "ask",
		}); err != nil {
			logger().Info("launch note", "error", err)
		}

		if _, err := client.SendMessage(ctx, flagProfile, args[0]); err != nil {
			return err
		}

		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return nil
				}

				var pe providerEvent
				if err := json.Unmarshal(evt.Data, &pe); err != nil {
					continue
				}

				switch pe.Type {
				case "text":
					fmt.Print(pe.Content)
				case "progress":
					fmt.Fprintf(os.Stderr, "[%s]\n", pe.Message)
				case "error":
					fmt.Println()

					return fmt.Errorf("provider error: %s", pe.Message)
				case "done":
					fmt.Println()

					return nil
				}

			case <-ctx.Done():
				_, _ = client.Stop(cmd.Context(), flagProfile)

				return ctx.Err()
			}
		}
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the profile's provider session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.Stop(cmd.Context(), flagProfile)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

func init() {
	sendCmd.Flags().StringVar(&flagProfile, "profile", "default", "profile to chat under")
	sendCmd.Flags().StringVar(&flagProvider, "provider", "claude", "provider to launch")
	stopCmd.Flags().StringVar(&flagProfile, "profile", "default", "profile whose session to stop")

	rootCmd.AddCommand(sendCmd, stopCmd)
}
