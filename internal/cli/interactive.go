package cli

import (
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todosync/internal/fakeapi"
	"github.com/idilsaglam/todosync/internal/logging"
	"github.com/idilsaglam/todosync/internal/tui"
)

func newTUICmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Browse and edit todos interactively",
		Args:        noArgs,
		Annotations: map[string]string{ownsTerminal: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.svc)
		},
	}
}

func newServeCmd(logOut io.Writer) *cobra.Command {
	var (
		addr  string
		empty bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory todo API for offline use",
		Long: `serve starts a local HTTP server exposing /todos with the same shape as
the public jsonplaceholder API, but keeping changes in memory. Point the
client at it with --api-url http://<addr>.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := logging.New(logOut, logging.Options{Level: "info", Prefix: "serve"})
			if err != nil {
				return err
			}
			defer closeLog()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			seed := fakeapi.DemoSeed()
			if empty {
				seed = nil
			}
			return fakeapi.Serve(cmd.Context(), ln, fakeapi.New(logger, seed...))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "address to listen on")
	cmd.Flags().BoolVar(&empty, "empty", false, "start without demo todos")
	return cmd
}
