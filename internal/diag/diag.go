package diag

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MaxEntries is the ring buffer capacity; the oldest entry is evicted
	// once it is exceeded.
	MaxEntries = 50
	// maxDetailLen bounds the stored detail string.
	maxDetailLen = 500
	// echoDetailLen bounds the detail echoed to the operator stream.
	echoDetailLen = 200
)

// Entry is one recorded failure.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Model      string    `json:"model"`
	ErrorType  string    `json:"errorType"`
	Details    string    `json:"details"`
	StatusCode int       `json:"statusCode,omitempty"`
}

// Log is a fixed-capacity FIFO of recent failures, safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	logger  zerolog.Logger
}

// New creates an empty Log that echoes records to the given logger.
func New(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Record appends a failure, truncating details and evicting the oldest entry
// once capacity is exceeded. statusCode of 0 means no HTTP status applies.
func (l *Log) Record(model, errorType, details string, statusCode int) {
	if len(details) > maxDetailLen {
		details = details[:maxDetailLen]
	}
	entry := Entry{
		Timestamp:  time.Now(),
		Model:      model,
		ErrorType:  errorType,
		Details:    details,
		StatusCode: statusCode,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[1:]
	}
	l.mu.Unlock()

	echo := details
	if len(echo) > echoDetailLen {
		echo = echo[:echoDetailLen]
	}
	ev := l.logger.Error().Str("model", model).Str("error_type", errorType)
	if statusCode != 0 {
		ev = ev.Int("status", statusCode)
	}
	ev.Msg(echo)
}

// List returns a snapshot copy of the entries, oldest first.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Remediation hints, in priority order.
const (
	HintCredential = "Invalid API key: check your `.env` file; keys may be expired or incorrect"
	HintRateLimit  = "Rate limited: you've hit the API rate limit, wait a few minutes"
	HintTimeout    = "Timeout: API is slow or overloaded, try again later or reduce payload size"
	HintConnection = "Connection error: network issue, check your internet connection"
	HintStatus     = "Check API provider status pages"
	HintCredits    = "Verify API keys are valid and have credits"
)

// Advise derives remediation hints from collected status codes and error
// text. Multiple causes may co-occur; all matching hints are returned in
// priority order. When nothing matches, generic guidance is returned.
func Advise(statusCodes []int, details []string) []string {
	var has401, has429 bool
	for _, c := range statusCodes {
		switch c {
		case 401:
			has401 = true
		case 429:
			has429 = true
		}
	}
	text := strings.ToLower(strings.Join(details, " "))
	hasTimeout := strings.Contains(text, "timeout")
	hasConnection := strings.Contains(text, "connect")

	var hints []string
	if has401 {
		hints = append(hints, HintCredential)
	}
	if has429 {
		hints = append(hints, HintRateLimit)
	}
	if hasTimeout {
		hints = append(hints, HintTimeout)
	}
	if hasConnection {
		hints = append(hints, HintConnection)
	}
	if len(hints) == 0 {
		hints = append(hints, HintStatus, HintCredits)
	}
	return hints
}

// Summarize derives remediation hints from recorded entries.
func Summarize(entries []Entry) []string {
	codes := make([]int, 0, len(entries))
	details := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.StatusCode != 0 {
			codes = append(codes, e.StatusCode)
		}
		details = append(details, e.Details)
	}
	return Advise(codes, details)
}

// FormatForHumans renders the most recent entries and their likely causes as
// markdown for display to a user.
func FormatForHumans(entries []Entry) string {
	if len(entries) == 0 {
		return "No errors recorded."
	}

	var b strings.Builder
	b.WriteString("## Recent Errors\n\n")
	start := 0
	if len(entries) > 5 {
		start = len(entries) - 5
	}
	for _, e := range entries[start:] {
		status := ""
		if e.StatusCode != 0 {
			status = fmt.Sprintf(" (HTTP %d)", e.StatusCode)
		}
		fmt.Fprintf(&b, "- **%s**: %s%s\n", e.Model, e.ErrorType, status)
		detail := e.Details
		if len(detail) > 150 {
			detail = detail[:150]
		}
		fmt.Fprintf(&b, "  - %s\n", detail)
	}

	b.WriteString("\n## Possible Causes\n\n")
	for _, hint := range Summarize(entries) {
		fmt.Fprintf(&b, "- %s\n", hint)
	}
	return b.String()
}
