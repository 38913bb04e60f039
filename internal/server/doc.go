// Package server exposes the verification engine as an MCP server over
// stdio: tool registration, request dispatch, and the session default model.
package server
