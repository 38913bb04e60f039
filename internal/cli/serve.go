package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long:  "Starts the Argus MCP server on stdin/stdout. Intended to be launched by an MCP client; logs go to stderr.",
	Run: func(cmd *cobra.Command, args []string) {
		srv, logger, err := buildServer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "argus: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server stopped")
			exitCode = ExitRuntimeError
		}
	},
}
