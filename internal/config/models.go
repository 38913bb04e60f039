package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies the upstream API family a model belongs to. The set is
// closed; header handling elsewhere switches exhaustively over it.
type Provider string

const (
	ProviderZAI        Provider = "zai"
	ProviderOpenRouter Provider = "openrouter"
)

// ModelConfig describes one callable chat-completion model.
type ModelConfig struct {
	Key             string        `yaml:"key"`
	Name            string        `yaml:"name"`
	Provider        Provider      `yaml:"provider"`
	BaseURL         string        `yaml:"baseUrl"`
	ModelID         string        `yaml:"modelId"`
	APIKeyEnv       string        `yaml:"apiKeyEnv"`
	APIKey          string        `yaml:"-"`
	Enabled         bool          `yaml:"-"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxTokens       int           `yaml:"maxTokens"`
	CostPer1K       float64       `yaml:"costPer1k"`
	CostInputPer1K  float64       `yaml:"costInputPer1k"`
	CostOutputPer1K float64       `yaml:"costOutputPer1k"`
}

const defaultModelTimeout = 60 * time.Second

// builtinModels mirrors the stock argus registry. Declaration order is the
// fallback order.
func builtinModels() []ModelConfig {
	return []ModelConfig{
		{
			Key:             "glm-4.7",
			Name:            "GLM 4.7",
			Provider:        ProviderZAI,
			BaseURL:         "https://api.z.ai/api/paas/v4",
			ModelID:         "glm-4.7",
			APIKeyEnv:       "ZAI_API_KEY",
			Timeout:         defaultModelTimeout,
			MaxTokens:       128000,
			CostPer1K:       0.0010,
			CostInputPer1K:  0.0004,
			CostOutputPer1K: 0.0016,
		},
		{
			Key:             "gemini-flash",
			Name:            "Gemini Flash",
			Provider:        ProviderOpenRouter,
			BaseURL:         "https://openrouter.ai/api/v1",
			ModelID:         "google/gemini-2.0-flash-001",
			APIKeyEnv:       "OPENROUTER_API_KEY",
			Timeout:         defaultModelTimeout,
			MaxTokens:       1000000,
			CostPer1K:       0.0009,
			CostInputPer1K:  0.0005,
			CostOutputPer1K: 0.0015,
		},
		{
			Key:             "minimax",
			Name:            "MiniMax M2",
			Provider:        ProviderOpenRouter,
			BaseURL:         "https://openrouter.ai/api/v1",
			ModelID:         "minimax/minimax-m2",
			APIKeyEnv:       "OPENROUTER_API_KEY",
			Timeout:         defaultModelTimeout,
			MaxTokens:       200000,
			CostPer1K:       0.0008,
			CostInputPer1K:  0.0003,
			CostOutputPer1K: 0.0012,
		},
	}
}

// Registry is an ordered, read-only collection of model configs.
type Registry struct {
	models []ModelConfig
	index  map[string]int
}

// NewRegistry builds a registry from the given models, resolving each model's
// credential from its APIKeyEnv and setting Enabled accordingly.
func NewRegistry(models []ModelConfig) *Registry {
	r := &Registry{index: make(map[string]int, len(models))}
	for _, m := range models {
		if m.Timeout <= 0 {
			m.Timeout = defaultModelTimeout
		}
		if m.APIKeyEnv != "" {
			m.APIKey = os.Getenv(m.APIKeyEnv)
		}
		m.Enabled = m.APIKey != ""
		if i, ok := r.index[m.Key]; ok {
			r.models[i] = m
			continue
		}
		r.index[m.Key] = len(r.models)
		r.models = append(r.models, m)
	}
	return r
}

// DefaultRegistry returns the built-in model registry.
func DefaultRegistry() *Registry {
	return NewRegistry(builtinModels())
}

// Get returns the config for key.
func (r *Registry) Get(key string) (ModelConfig, bool) {
	i, ok := r.index[key]
	if !ok {
		return ModelConfig{}, false
	}
	return r.models[i], true
}

// All returns every registered model in declaration order.
func (r *Registry) All() []ModelConfig {
	out := make([]ModelConfig, len(r.models))
	copy(out, r.models)
	return out
}

// Enabled returns the enabled models in declaration order.
func (r *Registry) Enabled() []ModelConfig {
	var out []ModelConfig
	for _, m := range r.models {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// EnabledKeys returns the keys of enabled models in declaration order.
func (r *Registry) EnabledKeys() []string {
	var out []string
	for _, m := range r.Enabled() {
		out = append(out, m.Key)
	}
	return out
}

// EnabledExcluding returns the enabled models minus the given key, preserving
// declaration order. This is the fallback sweep order.
func (r *Registry) EnabledExcluding(key string) []ModelConfig {
	var out []ModelConfig
	for _, m := range r.models {
		if m.Enabled && m.Key != key {
			out = append(out, m)
		}
	}
	return out
}

// modelFile is the YAML shape of an external model file.
type modelFile struct {
	Models []ModelConfig `yaml:"models"`
}

// loadModelFile overlays models from a YAML file onto the built-ins. Entries
// with a known key replace the built-in; new keys append after it.
func loadModelFile(path string) ([]ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}
	models := builtinModels()
	for _, m := range f.Models {
		if m.Key == "" {
			return nil, fmt.Errorf("model file: entry missing key")
		}
		replaced := false
		for i := range models {
			if models[i].Key == m.Key {
				models[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			models = append(models, m)
		}
	}
	return models, nil
}
