package validate

import (
	"fmt"
	"strings"

	"github.com/arguslabs/argus/internal/review"
)

const (
	// maxCodeBytes caps any single code/diff payload.
	maxCodeBytes = 500000
	// maxFiles caps a multi-file request.
	maxFiles = 50
	// maxTaskContextBytes caps the task description.
	maxTaskContextBytes = 10000
)

// Arguments checks a verification request for shape errors. It returns a
// human-readable error naming the first problem found.
func Arguments(req *review.Request) error {
	if strings.TrimSpace(req.TaskContext) == "" {
		return fmt.Errorf("task_context is required")
	}
	if len(req.TaskContext) > maxTaskContextBytes {
		return fmt.Errorf("task_context exceeds %d bytes", maxTaskContextBytes)
	}

	if req.Code == "" && req.Diff == "" && len(req.Files) == 0 {
		return fmt.Errorf("one of code, diff, or files must be provided")
	}

	if len(req.Code) > maxCodeBytes {
		return fmt.Errorf("code exceeds %d bytes", maxCodeBytes)
	}
	if len(req.Diff) > maxCodeBytes {
		return fmt.Errorf("diff exceeds %d bytes", maxCodeBytes)
	}
	if len(req.Files) > maxFiles {
		return fmt.Errorf("too many files: %d (max %d)", len(req.Files), maxFiles)
	}

	var total int
	for i, f := range req.Files {
		if strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("files[%d] is missing a path", i)
		}
		if f.Content == "" && f.Diff == "" {
			return fmt.Errorf("files[%d] (%s) has neither content nor diff", i, f.Path)
		}
		total += len(f.Content) + len(f.Diff)
	}
	if total > maxCodeBytes {
		return fmt.Errorf("combined file content exceeds %d bytes", maxCodeBytes)
	}

	return nil
}

// SanitizeFilePath normalizes a user-supplied path for display and language
// hints: traversal segments and null bytes are stripped and the path is made
// relative.
func SanitizeFilePath(path string) string {
	path = strings.ReplaceAll(path, "\x00", "")
	path = strings.ReplaceAll(path, "\\", "/")

	parts := strings.Split(path, "/")
	var kept []string
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

// SanitizePaths applies SanitizeFilePath to each path, dropping any that
// sanitize to empty.
func SanitizePaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		if s := SanitizeFilePath(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
