package render

import (
	"fmt"
	"strings"

	"github.com/arguslabs/argus/internal/cache"
	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/llm"
)

// Verdict renders a successful verification: the model's verdict followed by
// an attribution footer with fallback, cache, and cost notes.
func Verdict(res *llm.FallbackResult, fromCache bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", res.Verdict)
	fmt.Fprintf(&b, "\n---\n")
	fmt.Fprintf(&b, "*Verified by: %s*", res.Model)

	if res.FallbackUsed {
		fmt.Fprintf(&b, "\n*⚠️ Fallback: primary model %s did not respond*", res.PrimaryModelFailed)
	}
	if fromCache {
		fmt.Fprintf(&b, "\n*💾 Result served from cache*")
	}
	if res.Cost > 0 {
		fmt.Fprintf(&b, "\n*💰 Cost: $%.4f*", res.Cost)
	}

	return b.String()
}

// FailureReport renders an exhausted verification: the top-level error, the
// per-model failure details, and remediation recommendations.
func FailureReport(res *llm.FallbackResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "❌ **Verification Failed**\n\n")
	fmt.Fprintf(&b, "**Error:** %s\n", res.ErrorMessage)

	if res.ErrorDetails != "" {
		fmt.Fprintf(&b, "\n**Details:**\n%s\n", res.ErrorDetails)
	}
	if len(res.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n**Recommendations:**")
		for _, rec := range res.Recommendations {
			fmt.Fprintf(&b, "\n- %s", rec)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "\n*Use `diagnose` for detailed diagnostics*")
	return b.String()
}

// ModelsTable lists every registered model with enablement, pricing, and
// context size, and names the current default.
func ModelsTable(models []config.ModelConfig, defaultModel string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Available Models\n\n")
	for _, m := range models {
		status := "✅"
		if !m.Enabled {
			status = "❌"
		}
		fmt.Fprintf(&b, "%s **%s** (`%s`)\n", status, m.Name, m.Key)
		fmt.Fprintf(&b, "   - Provider: %s\n", m.Provider)
		fmt.Fprintf(&b, "   - Cost: $%.4f/1K in, $%.4f/1K out\n", m.CostInputPer1K, m.CostOutputPer1K)
		fmt.Fprintf(&b, "   - Context: %d tokens\n\n", m.MaxTokens)
	}
	fmt.Fprintf(&b, "\n**Default model:** `%s`", defaultModel)

	return b.String()
}

// DefaultChanged confirms a session-default switch.
func DefaultChanged(oldKey, newKey, newName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "✅ **Default model changed**\n\n")
	fmt.Fprintf(&b, "**Old model:** `%s`\n", oldKey)
	fmt.Fprintf(&b, "**New model:** `%s` (%s)\n\n", newKey, newName)
	fmt.Fprintf(&b, "Subsequent verifications will use %s unless a model is named explicitly.\n\n", newName)
	fmt.Fprintf(&b, "**Note:** the change lasts for the current session only.")

	return b.String()
}

// CacheStats renders the result-cache counters.
func CacheStats(stats cache.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cache Statistics\n\n")
	fmt.Fprintf(&b, "**Enabled:** %t\n", stats.Enabled)
	fmt.Fprintf(&b, "**Size:** %d / %d\n", stats.Size, stats.MaxSize)
	fmt.Fprintf(&b, "**TTL:** %d seconds", stats.TTLSeconds)

	return b.String()
}
