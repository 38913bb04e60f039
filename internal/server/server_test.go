package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguslabs/argus/internal/cache"
	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/diag"
	"github.com/arguslabs/argus/internal/llm"
	"github.com/arguslabs/argus/internal/review"
)

func testModel(key string, baseURL string) config.ModelConfig {
	return config.ModelConfig{
		Key:       key,
		Name:      key,
		Provider:  config.ProviderZAI,
		BaseURL:   baseURL,
		ModelID:   key + "-id",
		APIKey:    "test-key",
		Enabled:   true,
		Timeout:   5 * time.Second,
		MaxTokens: 4000,
		CostPer1K: 0.4,
	}
}

func fastPolicy() llm.RetryPolicy {
	p := llm.DefaultRetryPolicy()
	p.MinWait = time.Millisecond
	p.MaxWait = 4 * time.Millisecond
	return p
}

func newTestServer(models ...config.ModelConfig) *Server {
	settings := config.Settings{
		DefaultModel:    models[0].Key,
		Temperature:     0.3,
		MaxTokens:       100,
		CacheEnabled:    true,
		CacheTTLSeconds: 3600,
		CacheMaxSize:    10,
	}
	registry := config.NewRegistry(models)
	diagLog := diag.New(zerolog.Nop())
	manager := llm.NewManager(registry, fastPolicy(), diagLog, settings.Temperature, settings.MaxTokens)
	c := cache.New(settings.CacheEnabled, settings.CacheMaxSize, settings.CacheTTLSeconds)
	return New(settings, registry, manager, c, diagLog, zerolog.Nop())
}

func verdictServer(t *testing.T, verdict string, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": verdict}},
			},
			"usage": map[string]any{"total_tokens": 100},
		}
		body, _ := json.Marshal(resp)
		w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func TestVerify_SingleFileSuccess(t *testing.T) {
	backend := verdictServer(t, "APPROVED", nil)
	s := newTestServer(testModel("glm", backend.URL))

	req := &review.Request{
		Code:        "def main(): pass",
		FilePath:    "main.py",
		TaskContext: "add entry point",
	}
	result, fromCache, err := s.verify(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, fromCache)
	require.True(t, result.Success)
	assert.Contains(t, result.Verdict, "📄 **main.py**")
	assert.Contains(t, result.Verdict, "APPROVED")
	assert.InDelta(t, 0.04, result.Cost, 1e-9)
}

func TestVerify_ValidationErrorBeforeNetwork(t *testing.T) {
	s := newTestServer(testModel("glm", "http://127.0.0.1:1"))

	_, _, err := s.verify(context.Background(), &review.Request{Code: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_context")
}

func TestVerify_CacheHitSkipsBackend(t *testing.T) {
	var calls atomic.Int64
	backend := verdictServer(t, "APPROVED", &calls)
	s := newTestServer(testModel("glm", backend.URL))

	req := &review.Request{Code: "x = 1", TaskContext: "assign x"}

	_, fromCache, err := s.verify(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, fromCache)

	_, fromCache, err = s.verify(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, int64(1), calls.Load())
}

func TestVerify_CacheDisabledPerRequest(t *testing.T) {
	var calls atomic.Int64
	backend := verdictServer(t, "APPROVED", &calls)
	s := newTestServer(testModel("glm", backend.URL))

	off := false
	req := &review.Request{Code: "x = 1", TaskContext: "assign x", UseCache: &off}

	for i := 0; i < 2; i++ {
		_, fromCache, err := s.verify(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, fromCache)
	}
	assert.Equal(t, int64(2), calls.Load())
}

func TestVerify_FailuresNotCached(t *testing.T) {
	var calls atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	t.Cleanup(backend.Close)
	s := newTestServer(testModel("glm", backend.URL))

	req := &review.Request{Code: "x = 1", TaskContext: "assign x"}

	result, _, err := s.verify(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Success)

	before := calls.Load()
	_, fromCache, err := s.verify(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Greater(t, calls.Load(), before)
}

func TestVerify_FallbackDisabledUsesSingleModel(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(primary.Close)
	var fallbackCalls atomic.Int64
	fallback := verdictServer(t, "APPROVED", &fallbackCalls)

	s := newTestServer(testModel("glm", primary.URL), testModel("gemini", fallback.URL))

	off := false
	req := &review.Request{Code: "x = 1", TaskContext: "assign x", UseFallback: &off}

	result, _, err := s.verify(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, int64(0), fallbackCalls.Load())
	assert.NotEmpty(t, result.ErrorMessage)
	assert.Contains(t, result.Recommendations, diag.HintCredential)
}

func TestVerify_ExplicitModelOverridesDefault(t *testing.T) {
	var glmCalls, geminiCalls atomic.Int64
	glm := verdictServer(t, "APPROVED", &glmCalls)
	gemini := verdictServer(t, "APPROVED", &geminiCalls)
	s := newTestServer(testModel("glm", glm.URL), testModel("gemini", gemini.URL))

	req := &review.Request{Code: "x = 1", TaskContext: "assign x", Model: "gemini"}
	_, _, err := s.verify(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(0), glmCalls.Load())
	assert.Equal(t, int64(1), geminiCalls.Load())
}

func TestVerify_SecretsRedactedBeforeSend(t *testing.T) {
	var sawSecret atomic.Bool
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, m := range body.Messages {
			if strings.Contains(m.Content, "hunter2secret") {
				sawSecret.Store(true)
			}
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "APPROVED"}},
			},
		}
		out, _ := json.Marshal(resp)
		w.Write(out)
	}))
	t.Cleanup(backend.Close)
	s := newTestServer(testModel("glm", backend.URL))

	req := &review.Request{
		Code:        `api_key = "hunter2secret-value-123456"`,
		TaskContext: "configure client",
	}
	_, _, err := s.verify(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, sawSecret.Load(), "secret value should be redacted before the model call")
}

func TestDefaultModel_SessionSwitch(t *testing.T) {
	s := newTestServer(testModel("glm", "http://unused"), testModel("gemini", "http://unused"))

	assert.Equal(t, "glm", s.DefaultModel())
	old := s.setDefaultModel("gemini")
	assert.Equal(t, "glm", old)
	assert.Equal(t, "gemini", s.DefaultModel())
}

func TestProbeModels(t *testing.T) {
	ok := verdictServer(t, "pong", nil)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	t.Cleanup(bad.Close)

	disabled := testModel("off", "http://unused")
	disabled.APIKey = ""
	disabled.Enabled = false

	s := newTestServer(testModel("glm", ok.URL), testModel("gemini", bad.URL), disabled)

	probes := s.probeModels(context.Background())
	require.Len(t, probes, 3)
	assert.Equal(t, "glm", probes[0].ModelKey)
	assert.Equal(t, 429, probes[1].StatusCode)
	assert.Equal(t, "off", probes[2].ModelKey)
}

func TestRequestFingerprint_Stable(t *testing.T) {
	a := &review.Request{Code: "x = 1", TaskContext: "assign"}
	b := &review.Request{Code: "x = 1", TaskContext: "assign"}
	c := &review.Request{Code: "x = 2", TaskContext: "assign"}

	assert.Equal(t, requestFingerprint(a), requestFingerprint(b))
	assert.NotEqual(t, requestFingerprint(a), requestFingerprint(c))
}
