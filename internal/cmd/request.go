package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ptysidecar/internal/rpc"
)

func newRequestCmd() *cobra.Command {
	var socketPath string
	var method string
	var paramsRaw string

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send one request to a running sidecar and print its response",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(socketPath, method, paramsRaw)
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "unix socket path")
	cmd.Flags().StringVar(&method, "method", "", "RPC method name")
	cmd.Flags().StringVar(&paramsRaw, "params", "", "JSON params object")

	cmd.MarkFlagRequired("socket")
	cmd.MarkFlagRequired("method")

	return cmd
}

func runRequest(socketPath, method, paramsRaw string) error {
	var params json.RawMessage
	if paramsRaw != "" {
		if !json.Valid([]byte(paramsRaw)) {
			return fmt.Errorf("--params is not valid JSON")
		}
		params = json.RawMessage(paramsRaw)
	}

	out, err := rpc.Send(socketPath, method, params)
	if err != nil {
		return err
	}

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", "  "); err == nil {
			fmt.Println(pretty.String())
			return nil
		}
	}

	fmt.Print(string(out))
	return nil
}
