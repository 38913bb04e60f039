// Package cli wires together the Cobra command tree for the argus binary.
//
// It defines the root command and all subcommands (serve, models, diagnose,
// version), loads configuration, builds the verification engine, and returns
// deterministic exit codes.
package cli
