package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	bridge "github.com/wagiedev/provider-bridge-go"
)

var (
	flagConfig  string
	flagScript  string
	flagNode    string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "bridgectl",
	Short:         "Drive the provider bridge service from the command line",
	Long: `bridgectl spawns the provider bridge service and exposes its methods
as subcommands. It reads the same TOML config file as the application
(~/.config/provider-bridge/config.toml) and accepts the same overrides
as flags.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to a TOML config file")
	pf.StringVar(&flagScript, "script", "", "explicit bridge script path (skips discovery)")
	pf.StringVar(&flagNode, "node", "", "Node.js executable to run the bridge with")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log transport diagnostics to stderr")
}

// logger returns the slog logger the flags ask for.
func logger() *slog.Logger {
	if !flagVerbose {
		return bridge.NopLogger()
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newClient builds a client from the config file plus flag overrides.
// File options are applied first so flags win.
func newClient(sink bridge.EventSink) (*bridge.Client, error) {
	opts, err := bridge.LoadOptions(flagConfig)
	if err != nil {
		return nil, err
	}

	opts = append(opts, bridge.WithLogger(logger()))

	if flagScript != "" {
		opts = append(opts, bridge.WithScriptPath(flagScript))
	}

	if flagNode != "" {
		opts = append(opts, bridge.WithNodePath(flagNode))
	}

	if sink != nil {
		opts = append(opts, bridge.WithEventSink(sink))
	}

	return bridge.New(opts...)
}

// printJSON pretty-prints a raw bridge result to stdout.
func printJSON(raw json.RawMessage) error {
	var buf any

	if err := json.Unmarshal(raw, &buf); err != nil {
		// Not valid JSON; print verbatim.
		fmt.Println(string(raw))

		return nil
	}

	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
