package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arguslabs/argus/internal/cache"
	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/diag"
	"github.com/arguslabs/argus/internal/llm"
	"github.com/arguslabs/argus/internal/server"
)

const version = "2.0.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "MCP server for AI code verification",
	Long:  "Argus verifies code through external AI models over the Model Context Protocol, with retries, fallback, and result caching.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	// Bare `argus` serves, so MCP client launch configs need no subcommand.
	rootCmd.Run = serveCmd.Run

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print argus version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "argus version %s\n", version)
	},
}

// newLogger builds the stderr logger. Stdout is reserved for the MCP wire
// protocol, so all logging goes to stderr.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// buildServer loads configuration and assembles the verification engine.
func buildServer() (*server.Server, zerolog.Logger, error) {
	settings, registry, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logger := newLogger(settings.LogLevel)
	diagLog := diag.New(logger)
	manager := llm.NewManager(registry, llm.PolicyFromSettings(settings), diagLog, settings.Temperature, settings.MaxTokens)
	c := cache.New(settings.CacheEnabled, settings.CacheMaxSize, settings.CacheTTLSeconds)

	return server.New(settings, registry, manager, c, diagLog, logger), logger, nil
}
