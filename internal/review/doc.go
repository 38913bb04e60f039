// Package review assembles the prompts sent to a model for code
// verification.
//
// A request arrives in one of three modes: a single file's full code, a git
// unified diff, or multiple files with optional per-file diffs. The mode is
// detected from which arguments are present; it drives how the code is
// formatted for the model and how file paths are extracted for language
// hints.
package review
