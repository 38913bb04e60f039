package llm

import "fmt"

// ErrorKind classifies a model-call failure. The set is closed so the retry
// controller and orchestrator can handle every case explicitly.
type ErrorKind int

const (
	// KindHTTP: the remote API rejected the call with a non-2xx status.
	KindHTTP ErrorKind = iota
	// KindTimeout: no response within the model's configured timeout.
	KindTimeout
	// KindConnection: transport-level failure before any response.
	KindConnection
	// KindConfig: model unknown, disabled, or missing its credential.
	// Raised at resolution time, never retried.
	KindConfig
	// KindUnexpected: anything else, caught at the orchestrator boundary.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "HTTP Error"
	case KindTimeout:
		return "Timeout"
	case KindConnection:
		return "Connection Error"
	case KindConfig:
		return "Config Error"
	default:
		return "Unexpected Error"
	}
}

// Failure is a classified model-call error.
type Failure struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // 0 unless Kind is KindHTTP
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Usage is the token accounting reported by the API. All fields are zero when
// the response carried no usage object.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Outcome is the result of verifying through a single model (after retries).
type Outcome struct {
	Success  bool    `json:"success"`
	Verdict  string  `json:"verdict,omitempty"`
	Model    string  `json:"model"`
	ModelKey string  `json:"modelKey"`
	Tokens   Usage   `json:"tokensUsed"`
	Cost     float64 `json:"cost"`

	// Err is set when Success is false.
	Err *Failure `json:"-"`
}

// ModelFailure is one collected failure in a fallback sweep.
type ModelFailure struct {
	Model      string `json:"model"`
	Error      string `json:"error"`
	StatusCode int    `json:"errorCode,omitempty"`
}

// FallbackResult is the outcome of a primary-plus-fallback verification.
// On success it carries the answering model's Outcome plus fallback metadata;
// on exhaustion it carries the ordered per-model failures and remediation
// hints.
type FallbackResult struct {
	Outcome

	FallbackUsed       bool   `json:"fallbackUsed,omitempty"`
	PrimaryModelFailed string `json:"primaryModelFailed,omitempty"`

	ErrorMessage    string         `json:"error,omitempty"`
	ErrorDetails    string         `json:"errorDetails,omitempty"`
	Failures        []ModelFailure `json:"errors,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}
