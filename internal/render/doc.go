// Package render formats verification results, model listings, cache
// statistics, and diagnostics as markdown for MCP clients.
package render
