package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/diag"
)

// Manager resolves per-model callers and drives verification with fallback.
// One caller is created per model key for the lifetime of the process; shared
// state is a mutex-guarded map, so independent requests may run concurrently.
type Manager struct {
	registry    *config.Registry
	retry       RetryPolicy
	log         *diag.Log
	temperature float64
	maxTokens   int

	mu      sync.Mutex
	callers map[string]*Caller
}

// NewManager creates a manager over the given registry. Temperature and
// maxTokens apply to every verification request.
func NewManager(registry *config.Registry, retry RetryPolicy, log *diag.Log, temperature float64, maxTokens int) *Manager {
	return &Manager{
		registry:    registry,
		retry:       retry,
		log:         log,
		temperature: temperature,
		maxTokens:   maxTokens,
		callers:     make(map[string]*Caller),
	}
}

// Resolve returns the cached caller for key, creating it on first use.
// Unknown or disabled models fail here with a config error; no network call
// is ever attempted for them.
func (m *Manager) Resolve(key string) (*Caller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.callers[key]; ok {
		return c, nil
	}
	cfg, ok := m.registry.Get(key)
	if !ok {
		return nil, &Failure{Kind: KindConfig, Message: fmt.Sprintf("unknown model: %s", key)}
	}
	c, err := NewCaller(cfg, m.retry, m.log)
	if err != nil {
		return nil, err
	}
	m.callers[key] = c
	return c, nil
}

// VerifySingle verifies through exactly one model, no fallback.
func (m *Manager) VerifySingle(ctx context.Context, systemPrompt, userMessage, key string) Outcome {
	caller, err := m.Resolve(key)
	if err != nil {
		fail := asFailure(err)
		m.log.Record(key, fail.Kind.String(), fail.Message, fail.StatusCode)
		return Outcome{ModelKey: key, Err: fail}
	}
	return m.attempt(ctx, caller, systemPrompt, userMessage)
}

// VerifyWithFallback verifies through the primary model, then walks every
// other enabled model in registry order until one succeeds. Attempts are
// strictly sequential; each runs only because its predecessor failed.
func (m *Manager) VerifyWithFallback(ctx context.Context, systemPrompt, userMessage, primary string) FallbackResult {
	var collected []ModelFailure

	outcome, fail := m.tryModel(ctx, primary, systemPrompt, userMessage)
	if fail == nil {
		return FallbackResult{Outcome: outcome}
	}
	collected = append(collected, *fail)

	fallbacks := m.registry.EnabledExcluding(primary)
	for _, cfg := range fallbacks {
		if ctx.Err() != nil {
			break
		}
		outcome, fail := m.tryModel(ctx, cfg.Key, systemPrompt, userMessage)
		if fail == nil {
			result := FallbackResult{Outcome: outcome}
			result.FallbackUsed = true
			result.PrimaryModelFailed = primary
			return result
		}
		collected = append(collected, *fail)
	}

	return m.allFailed(primary, fallbacks, collected)
}

// tryModel runs one retry-wrapped attempt against a model, converting every
// failure mode, including resolution errors, into a collected ModelFailure.
func (m *Manager) tryModel(ctx context.Context, key, systemPrompt, userMessage string) (Outcome, *ModelFailure) {
	caller, err := m.Resolve(key)
	if err != nil {
		fail := asFailure(err)
		m.log.Record(key, fail.Kind.String(), fail.Message, fail.StatusCode)
		return Outcome{}, &ModelFailure{Model: key, Error: fail.Message, StatusCode: fail.StatusCode}
	}

	outcome := m.attempt(ctx, caller, systemPrompt, userMessage)
	if outcome.Success {
		return outcome, nil
	}
	mf := &ModelFailure{Model: key, Error: "unknown error"}
	if outcome.Err != nil {
		mf.Error = outcome.Err.Message
		mf.StatusCode = outcome.Err.StatusCode
	}
	return Outcome{}, mf
}

// attempt shields the orchestrator from panics in the call path; whatever
// goes wrong becomes a structured failure.
func (m *Manager) attempt(ctx context.Context, caller *Caller, systemPrompt, userMessage string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			fail := &Failure{Kind: KindUnexpected, Message: fmt.Sprintf("panic: %v", r)}
			m.log.Record(caller.cfg.Key, fail.Kind.String(), fail.Message, 0)
			outcome = Outcome{Model: caller.cfg.Name, ModelKey: caller.cfg.Key, Err: fail}
		}
	}()
	return caller.Verify(ctx, systemPrompt, userMessage, m.temperature, m.maxTokens)
}

// allFailed assembles the exhaustion result: which models were tried, each
// one's error, and deduplicated remediation hints.
func (m *Manager) allFailed(primary string, fallbacks []config.ModelConfig, collected []ModelFailure) FallbackResult {
	fallbackKeys := make([]string, 0, len(fallbacks))
	for _, cfg := range fallbacks {
		fallbackKeys = append(fallbackKeys, cfg.Key)
	}

	var details strings.Builder
	for i, f := range collected {
		if i > 0 {
			details.WriteString("\n")
		}
		msg := f.Error
		if len(msg) > 100 {
			msg = msg[:100]
		}
		fmt.Fprintf(&details, "  - %s: %s", f.Model, msg)
	}

	codes := make([]int, 0, len(collected))
	texts := make([]string, 0, len(collected))
	for _, f := range collected {
		if f.StatusCode != 0 {
			codes = append(codes, f.StatusCode)
		}
		texts = append(texts, f.Error)
	}

	return FallbackResult{
		Outcome: Outcome{Model: "None"},
		ErrorMessage: fmt.Sprintf("All models failed. Primary: %s, Fallbacks: [%s]",
			primary, strings.Join(fallbackKeys, ", ")),
		ErrorDetails:    details.String(),
		Failures:        collected,
		Recommendations: diag.Advise(codes, texts),
	}
}

// asFailure normalizes any error into a *Failure.
func asFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindUnexpected, Message: err.Error()}
}
