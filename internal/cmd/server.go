package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ptysidecar/internal/config"
	"ptysidecar/internal/rpc"
	"ptysidecar/internal/socketlock"
	"ptysidecar/internal/supervisor"
)

func newServerCmd() *cobra.Command {
	var socketPath string
	var configPath string
	var watchConfig bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the sidecar dispatcher until dispose or a termination signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(socketPath, configPath, watchConfig)
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "unix socket path (default from config, or ~/.ptysidecar/ptysidecar.sock)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default ~/.ptysidecar/config.yaml)")
	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "live-reload maxBufferBytes from the config file")

	return cmd
}

func runServer(socketPath, configPath string, watchConfig bool) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	cfg2 := cfg.WithDefaults()

	if socketPath == "" {
		socketPath = cfg2.SocketPath
	}

	guard, err := socketlock.Acquire(socketPath)
	if err != nil {
		return err
	}
	defer guard.Release()

	reg := supervisor.NewRegistry(cfg2.MaxBufferBytes, cfg2.DefaultCols, cfg2.DefaultRows, cfg2.DefaultShell)
	server := rpc.NewServer(socketPath, reg)

	if watchConfig {
		go config.Watch(path, reg)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("ptysidecar: received %s", sig)
		server.Stop()
	}()

	return server.Run()
}
