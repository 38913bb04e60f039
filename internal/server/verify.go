package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arguslabs/argus/internal/cache"
	"github.com/arguslabs/argus/internal/diag"
	"github.com/arguslabs/argus/internal/llm"
	"github.com/arguslabs/argus/internal/render"
	"github.com/arguslabs/argus/internal/review"
	"github.com/arguslabs/argus/internal/validate"
)

const verifyCodeDescription = `Verifies code through an external AI model with a zero-trust approach.

MODES:
1. Single File - review one file (params: code + file_path)
2. Git Diff - review changes via git diff (param: diff)
3. Multiple Files - review multiple files with cross-file dependencies (param: files[])

FEATURES:
- Retry with exponential backoff
- Automatic fallback to other models on error
- Result caching
- Language-aware checks derived from file extensions
- Security (OWASP), performance, and architecture checks

USAGE:
- "Review my code" - basic check
- "Check code with Gemini" - model selection
- "Verify changes in multiple files" - cross-file review`

// verifyPayload is the structured verify_code output: the verification
// result plus a cache marker.
type verifyPayload struct {
	llm.FallbackResult
	FromCache bool `json:"fromCache,omitempty"`
}

func (s *Server) registerVerifyCode(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "verify_code",
		Description: verifyCodeDescription,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input review.Request) (*mcp.CallToolResult, verifyPayload, error) {
		payload, fromCache, err := s.verify(ctx, &input)
		if err != nil {
			return textResult(fmt.Sprintf("❌ Validation error: %v", err), true), verifyPayload{}, nil
		}

		out := verifyPayload{FallbackResult: payload, FromCache: fromCache}
		if !payload.Success {
			return textResult(render.FailureReport(&payload), true), out, nil
		}
		return textResult(render.Verdict(&payload, fromCache), false), out, nil
	})
}

// verify runs validation, cache lookup, prompt construction, and the model
// call. The returned error is a validation error only; call failures come
// back inside the result.
func (s *Server) verify(ctx context.Context, req *review.Request) (llm.FallbackResult, bool, error) {
	if err := validate.Arguments(req); err != nil {
		return llm.FallbackResult{}, false, err
	}

	mode := review.DetectMode(req)
	modelKey := req.Model
	if modelKey == "" {
		modelKey = s.DefaultModel()
	}

	s.logger.Info().
		Str("tool", "verify_code").
		Str("mode", string(mode)).
		Str("model", modelKey).
		Bool("cache", req.CacheEnabled()).
		Bool("fallback", req.FallbackEnabled()).
		Msg("verification requested")

	fingerprint := requestFingerprint(req)
	if req.CacheEnabled() {
		if cached, ok := s.cache.Get(fingerprint, modelKey); ok {
			s.logger.Debug().Str("model", modelKey).Msg("cache hit")
			return cached, true, nil
		}
	}

	header, content := review.FormatCode(req, mode)
	content = validate.RedactSecrets(content)
	paths := validate.SanitizePaths(review.ExtractFilePaths(req, mode))

	systemPrompt := review.BuildSystemPrompt(mode, paths, req.ProjectStack)
	userMessage := review.BuildUserMessage(req.TaskContext, req.SessionChanges, content)

	var result llm.FallbackResult
	if req.FallbackEnabled() {
		result = s.manager.VerifyWithFallback(ctx, systemPrompt, userMessage, modelKey)
	} else {
		result = s.verifySingle(ctx, systemPrompt, userMessage, modelKey)
	}

	if result.Success && header != "" {
		result.Verdict = header + "\n\n" + result.Verdict
	}

	// Results interrupted by cancellation are incomplete; never cache them.
	if req.CacheEnabled() && result.Success && ctx.Err() == nil {
		s.cache.Set(fingerprint, modelKey, result)
	}

	return result, false, nil
}

// verifySingle wraps a no-fallback call into the common result shape so the
// renderers and cache treat both paths alike.
func (s *Server) verifySingle(ctx context.Context, systemPrompt, userMessage, modelKey string) llm.FallbackResult {
	outcome := s.manager.VerifySingle(ctx, systemPrompt, userMessage, modelKey)
	result := llm.FallbackResult{Outcome: outcome}
	if !outcome.Success && outcome.Err != nil {
		result.ErrorMessage = outcome.Err.Error()
		result.ErrorDetails = fmt.Sprintf("  - %s: %s", modelKey, outcome.Err.Error())
		result.Recommendations = diag.Advise([]int{outcome.Err.StatusCode}, []string{outcome.Err.Message})
	}
	return result
}

// requestFingerprint canonicalizes a request for cache keying. Marshaling is
// deterministic for a fixed struct, so equal requests share a fingerprint.
func requestFingerprint(req *review.Request) string {
	material, err := json.Marshal(req)
	if err != nil {
		return cache.Fingerprint(req.TaskContext + req.Code + req.Diff)
	}
	return cache.Fingerprint(string(material))
}
