// Argus is an MCP server that verifies code through external AI models.
//
// It reviews single files, git diffs, and multi-file changes with a
// zero-trust prompt, retrying transient API failures and falling back to
// alternate models when the primary is unavailable. Results are cached and
// every model failure is recorded for diagnostics.
//
// Usage:
//
//	argus serve       # serve MCP over stdio (for MCP clients)
//	argus models      # list configured models
//	argus diagnose    # test API connectivity and show recent errors
//	argus version     # print version
//
// Configuration comes from the environment (ARGUS_* variables), optionally
// loaded from a .env file in the working directory.
package main
