package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/render"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models",
	Run: func(cmd *cobra.Command, args []string) {
		settings, registry, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "argus: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		fmt.Fprintln(os.Stdout, render.ModelsTable(registry.All(), settings.DefaultModel))
	},
}
