// bridgectl drives the provider bridge service from the command line.
//
// It spawns the same bridge process the desktop application uses and
// exposes every bridge method as a subcommand, which makes it useful for
// debugging the bridge without launching the UI.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
