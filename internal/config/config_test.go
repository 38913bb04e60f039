package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRegistry_EnablementFollowsCredential(t *testing.T) {
	t.Setenv("TEST_KEY_SET", "secret")
	os.Unsetenv("TEST_KEY_UNSET")

	r := NewRegistry([]ModelConfig{
		{Key: "a", APIKeyEnv: "TEST_KEY_SET"},
		{Key: "b", APIKeyEnv: "TEST_KEY_UNSET"},
	})

	a, ok := r.Get("a")
	if !ok || !a.Enabled || a.APIKey != "secret" {
		t.Errorf("a = %+v, want enabled with resolved key", a)
	}
	b, ok := r.Get("b")
	if !ok || b.Enabled {
		t.Errorf("b = %+v, want disabled", b)
	}
}

func TestNewRegistry_DirectKeySkipsEnv(t *testing.T) {
	r := NewRegistry([]ModelConfig{{Key: "a", APIKey: "inline"}})

	a, _ := r.Get("a")
	if !a.Enabled || a.APIKey != "inline" {
		t.Errorf("a = %+v, want enabled with inline key", a)
	}
}

func TestNewRegistry_DefaultTimeout(t *testing.T) {
	r := NewRegistry([]ModelConfig{{Key: "a", APIKey: "k"}})

	a, _ := r.Get("a")
	if a.Timeout != defaultModelTimeout {
		t.Errorf("Timeout = %v, want %v", a.Timeout, defaultModelTimeout)
	}
}

func TestRegistry_OrderIsDeclarationOrder(t *testing.T) {
	r := NewRegistry([]ModelConfig{
		{Key: "c", APIKey: "k"},
		{Key: "a", APIKey: "k"},
		{Key: "b"},
	})

	keys := r.EnabledKeys()
	if len(keys) != 2 || keys[0] != "c" || keys[1] != "a" {
		t.Errorf("EnabledKeys = %v, want [c a]", keys)
	}
}

func TestRegistry_EnabledExcluding(t *testing.T) {
	r := NewRegistry([]ModelConfig{
		{Key: "a", APIKey: "k"},
		{Key: "b", APIKey: "k"},
		{Key: "c", APIKey: "k"},
	})

	rest := r.EnabledExcluding("b")
	if len(rest) != 2 || rest[0].Key != "a" || rest[1].Key != "c" {
		t.Errorf("EnabledExcluding = %+v, want [a c]", rest)
	}
}

func TestDefaultRegistry_BuiltinOrder(t *testing.T) {
	r := DefaultRegistry()

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("len(All) = %d, want 3", len(all))
	}
	want := []string{"glm-4.7", "gemini-flash", "minimax"}
	for i, m := range all {
		if m.Key != want[i] {
			t.Errorf("All[%d].Key = %q, want %q", i, m.Key, want[i])
		}
	}
}

func TestLoadModelFile_OverlayAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	data := `models:
  - key: glm-4.7
    name: GLM Custom
    provider: zai
    baseUrl: https://example.test/v4
    modelId: glm-custom
    apiKeyEnv: ZAI_API_KEY
    maxTokens: 64000
  - key: extra
    name: Extra Model
    provider: openrouter
    baseUrl: https://openrouter.ai/api/v1
    modelId: vendor/extra
    apiKeyEnv: OPENROUTER_API_KEY
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	models, err := loadModelFile(path)
	if err != nil {
		t.Fatalf("loadModelFile error: %v", err)
	}
	if len(models) != 4 {
		t.Fatalf("len(models) = %d, want 4", len(models))
	}
	if models[0].Name != "GLM Custom" || models[0].ModelID != "glm-custom" {
		t.Errorf("overlay not applied: %+v", models[0])
	}
	if models[3].Key != "extra" {
		t.Errorf("appended model = %+v, want key extra", models[3])
	}
}

func TestLoadModelFile_MissingKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte("models:\n  - name: anonymous\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadModelFile(path); err == nil {
		t.Error("expected error for entry without key")
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, v := range []string{
		"ARGUS_DEFAULT_MODEL", "ARGUS_TEMPERATURE", "ARGUS_MAX_TOKENS",
		"ARGUS_RETRY_ATTEMPTS", "ARGUS_RETRY_MIN_WAIT", "ARGUS_RETRY_MAX_WAIT",
		"ARGUS_RETRY_STATUS_CODES", "ARGUS_CACHE_ENABLED", "ARGUS_CACHE_TTL",
		"ARGUS_CACHE_MAX_SIZE", "ARGUS_LOG_LEVEL", "ARGUS_MODELS_FILE",
	} {
		os.Unsetenv(v)
	}

	s, registry, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.DefaultModel != "glm-4.7" {
		t.Errorf("DefaultModel = %q", s.DefaultModel)
	}
	if s.Temperature != 0.3 || s.MaxTokens != 4000 {
		t.Errorf("Temperature = %v, MaxTokens = %d", s.Temperature, s.MaxTokens)
	}
	if s.RetryAttempts != 3 || s.RetryMinWait != time.Second || s.RetryMaxWait != 10*time.Second {
		t.Errorf("retry settings = %d/%v/%v", s.RetryAttempts, s.RetryMinWait, s.RetryMaxWait)
	}
	if len(s.RetryStatusCodes) != 5 || s.RetryStatusCodes[0] != 429 {
		t.Errorf("RetryStatusCodes = %v", s.RetryStatusCodes)
	}
	if !s.CacheEnabled || s.CacheTTLSeconds != 3600 || s.CacheMaxSize != 100 {
		t.Errorf("cache settings = %v/%d/%d", s.CacheEnabled, s.CacheTTLSeconds, s.CacheMaxSize)
	}
	if registry == nil || len(registry.All()) != 3 {
		t.Error("expected built-in registry")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ARGUS_DEFAULT_MODEL", "minimax")
	t.Setenv("ARGUS_RETRY_ATTEMPTS", "5")
	t.Setenv("ARGUS_RETRY_STATUS_CODES", "429,503")
	t.Setenv("ARGUS_CACHE_ENABLED", "false")

	s, _, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.DefaultModel != "minimax" {
		t.Errorf("DefaultModel = %q", s.DefaultModel)
	}
	if s.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d", s.RetryAttempts)
	}
	if len(s.RetryStatusCodes) != 2 || s.RetryStatusCodes[1] != 503 {
		t.Errorf("RetryStatusCodes = %v", s.RetryStatusCodes)
	}
	if s.CacheEnabled {
		t.Error("CacheEnabled should be false")
	}
}
