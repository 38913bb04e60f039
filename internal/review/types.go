package review

// File is one entry of a multi-file review request.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Diff    string `json:"diff,omitempty"`
	Stats   string `json:"stats,omitempty"`
}

// ProjectStack describes the project's technology stack, used to sharpen the
// system prompt.
type ProjectStack struct {
	Framework    string `json:"framework,omitempty"`
	Frontend     string `json:"frontend,omitempty"`
	Backend      string `json:"backend,omitempty"`
	Database     string `json:"database,omitempty"`
	Conventions  string `json:"conventions,omitempty"`
	Architecture string `json:"architecture,omitempty"`
}

// Request is a code verification request as received from the dispatch layer.
type Request struct {
	Code           string        `json:"code,omitempty"`
	Diff           string        `json:"diff,omitempty"`
	Files          []File        `json:"files,omitempty"`
	TaskContext    string        `json:"task_context"`
	SessionChanges string        `json:"session_changes,omitempty"`
	FilePath       string        `json:"file_path,omitempty"`
	Model          string        `json:"model,omitempty"`
	UseCache       *bool         `json:"use_cache,omitempty"`
	UseFallback    *bool         `json:"use_fallback,omitempty"`
	ProjectStack   *ProjectStack `json:"project_stack,omitempty"`
}

// CacheEnabled reports whether the request allows cached results
// (default true).
func (r *Request) CacheEnabled() bool {
	return r.UseCache == nil || *r.UseCache
}

// FallbackEnabled reports whether the request allows model fallback
// (default true).
func (r *Request) FallbackEnabled() bool {
	return r.UseFallback == nil || *r.UseFallback
}
