package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Test API connectivity and show recent errors",
	Run: func(cmd *cobra.Command, args []string) {
		srv, _, err := buildServer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "argus: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		fmt.Fprintln(os.Stdout, srv.Diagnose(cmd.Context()))
	},
}
