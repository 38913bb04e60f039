package review

import (
	"fmt"
	"strings"
)

// Mode is the review input shape.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeDiff     Mode = "diff"
	ModeMultiple Mode = "multiple"
	ModeUnknown  Mode = "unknown"
)

// DetectMode determines the review mode from which arguments are set.
// Diff wins over files, files over code, matching the dispatch contract.
func DetectMode(req *Request) Mode {
	switch {
	case req.Diff != "":
		return ModeDiff
	case len(req.Files) > 0:
		return ModeMultiple
	case req.Code != "":
		return ModeSingle
	default:
		return ModeUnknown
	}
}

// ExtractFilePaths collects the file paths referenced by the request, used
// for language hints. Paths are returned as given; sanitization is the
// caller's concern.
func ExtractFilePaths(req *Request, mode Mode) []string {
	switch mode {
	case ModeSingle:
		if req.FilePath != "" {
			return []string{req.FilePath}
		}
		return nil
	case ModeDiff:
		return diffPaths(req.Diff)
	case ModeMultiple:
		var paths []string
		for _, f := range req.Files {
			if f.Path != "" {
				paths = append(paths, f.Path)
			}
		}
		return paths
	default:
		return nil
	}
}

// diffPaths parses "diff --git a/... b/..." headers out of a unified diff.
func diffPaths(diff string) []string {
	var paths []string
	for _, line := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(line, "diff --git") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 4 {
			paths = append(paths, strings.TrimPrefix(parts[3], "b/"))
		}
	}
	return paths
}

// FormatCode renders the request's code for the model, returning a files
// header (for the verdict banner) and the code content block.
func FormatCode(req *Request, mode Mode) (header, content string) {
	switch mode {
	case ModeSingle:
		path := req.FilePath
		if path == "" {
			path = "unknown"
		}
		header = fmt.Sprintf("📄 **%s**", path)
		content = fmt.Sprintf("## Code for review\n```\n%s\n```", req.Code)
		return header, content

	case ModeDiff:
		paths := diffPaths(req.Diff)
		if len(paths) > 0 {
			var lines []string
			for _, p := range paths {
				lines = append(lines, fmt.Sprintf("📄 **%s**", p))
			}
			header = strings.Join(lines, "\n")
		} else {
			header = "📄 **Changes**"
		}
		content = fmt.Sprintf("## Git Diff\n```diff\n%s\n```", req.Diff)
		return header, content

	case ModeMultiple:
		var headers, blocks []string
		for _, f := range req.Files {
			path := f.Path
			if path == "" {
				path = "unknown"
			}
			h := fmt.Sprintf("📄 **%s**", path)
			if f.Stats != "" {
				h += " " + f.Stats
			}
			headers = append(headers, h)

			if f.Diff != "" {
				blocks = append(blocks, fmt.Sprintf("### %s\n```diff\n%s\n```", path, f.Diff))
			} else {
				blocks = append(blocks, fmt.Sprintf("### %s\n```\n%s\n```", path, f.Content))
			}
		}
		return strings.Join(headers, "\n"), strings.Join(blocks, "\n\n")

	default:
		return "", ""
	}
}
