// Package cmd wires the ptysidecar CLI: a cobra root command with two
// subcommands, "server" (run the dispatcher) and "request" (one-shot
// client call).
package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with both subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ptysidecar",
		Short: "PTY-supervising sidecar daemon",
		Long:  "ptysidecar supervises PTY-backed child processes, grouped into sessions and addressed as windows, over a local Unix-domain socket.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if runtime.GOOS == "windows" {
				return fmt.Errorf("ptysidecar currently supports unix domain sockets only")
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		newServerCmd(),
		newRequestCmd(),
	)

	return rootCmd
}
