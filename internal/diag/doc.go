// Package diag keeps a bounded in-memory log of recent model-call failures
// and derives remediation hints from them.
//
// The log is an explicit component, constructed with [New] and passed to
// whatever needs to record failures. Every record is also echoed to the
// operator log stream so failures are visible live without inspecting
// results.
package diag
