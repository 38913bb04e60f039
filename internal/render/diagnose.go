package render

import (
	"fmt"
	"strings"

	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/diag"
)

// ProbeStatus classifies one connection-test attempt.
type ProbeStatus int

const (
	ProbeSkipped ProbeStatus = iota
	ProbeOK
	ProbeHTTPError
	ProbeTimeout
	ProbeConnectError
	ProbeError
)

// Probe is the outcome of one live connection test against a model's API.
type Probe struct {
	ModelKey   string
	Status     ProbeStatus
	StatusCode int    // set for ProbeHTTPError
	Detail     string // truncated error text, empty on success
}

func (p Probe) failed() bool {
	switch p.Status {
	case ProbeHTTPError, ProbeTimeout, ProbeConnectError, ProbeError:
		return true
	}
	return false
}

func (p Probe) line() string {
	switch p.Status {
	case ProbeOK:
		return "✅ Connected"
	case ProbeHTTPError:
		return fmt.Sprintf("❌ HTTP %d: %s", p.StatusCode, p.Detail)
	case ProbeTimeout:
		return "⏱️ Timeout (>10s)"
	case ProbeConnectError:
		return fmt.Sprintf("🌐 Connection failed: %s", p.Detail)
	case ProbeError:
		return fmt.Sprintf("❓ Error: %s", p.Detail)
	default:
		return "⏭️ Skipped (no API key)"
	}
}

func (p Probe) recommendation() string {
	switch {
	case p.Status == ProbeHTTPError && p.StatusCode == 401:
		return "Invalid API key. Check `.env` file."
	case p.Status == ProbeHTTPError && p.StatusCode == 429:
		return "Rate limited. Wait a few minutes."
	case p.Status == ProbeTimeout:
		return "API slow or overloaded. Try later."
	case p.Status == ProbeConnectError:
		return "Network issue. Check internet connection."
	default:
		return "Check API provider status page."
	}
}

// DiagnosticsReport renders credential presence, live connection tests,
// recent error-log entries, and per-model recommendations.
func DiagnosticsReport(models []config.ModelConfig, probes []Probe, entries []diag.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 🔍 Argus Diagnostics\n\n")

	fmt.Fprintf(&b, "## API Keys Status\n\n")
	for _, m := range models {
		if m.APIKey == "" {
			fmt.Fprintf(&b, "- **%s** (%s): ❌ MISSING\n", m.Name, m.Key)
			continue
		}
		fmt.Fprintf(&b, "- **%s** (%s): ✅\n", m.Name, m.Key)
		fmt.Fprintf(&b, "  - Key: `%s...`\n", keyPreview(m.APIKey))
		fmt.Fprintf(&b, "  - Provider: %s\n", m.Provider)
	}

	fmt.Fprintf(&b, "\n## Connection Tests\n\n")
	for _, p := range probes {
		fmt.Fprintf(&b, "- **%s**: %s\n", p.ModelKey, p.line())
	}

	fmt.Fprintf(&b, "\n## Recent Errors\n\n")
	if len(entries) == 0 {
		fmt.Fprintf(&b, "No recent errors recorded.\n")
	} else {
		start := len(entries) - 5
		if start < 0 {
			start = 0
		}
		for _, e := range entries[start:] {
			status := ""
			if e.StatusCode != 0 {
				status = fmt.Sprintf(" (HTTP %d)", e.StatusCode)
			}
			fmt.Fprintf(&b, "- `%s` **%s**: %s%s\n", e.Timestamp.Format("2006-01-02T15:04:05"), e.Model, e.ErrorType, status)
			fmt.Fprintf(&b, "  - %s\n", truncate(e.Details, 100))
		}
	}

	fmt.Fprintf(&b, "\n## Recommendations\n\n")
	healthy := true
	for _, p := range probes {
		if p.failed() {
			healthy = false
			fmt.Fprintf(&b, "- **%s**: %s\n", p.ModelKey, p.recommendation())
		}
	}
	if healthy {
		fmt.Fprintf(&b, "✅ All systems operational!\n")
	}

	return b.String()
}

func keyPreview(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
