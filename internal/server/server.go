package server

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/arguslabs/argus/internal/cache"
	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/diag"
	"github.com/arguslabs/argus/internal/llm"
	"github.com/arguslabs/argus/internal/render"
)

const (
	serverName    = "argus"
	serverVersion = "2.0.0"
)

// Server wires the verification engine to MCP tool dispatch.
type Server struct {
	settings config.Settings
	registry *config.Registry
	manager  *llm.Manager
	cache    *cache.Cache
	diagLog  *diag.Log
	logger   zerolog.Logger

	mu           sync.Mutex
	defaultModel string
}

// New builds a server. The session default model starts at the configured
// default and can be changed per session via the set_default_model tool.
func New(settings config.Settings, registry *config.Registry, manager *llm.Manager, c *cache.Cache, diagLog *diag.Log, logger zerolog.Logger) *Server {
	return &Server{
		settings:     settings,
		registry:     registry,
		manager:      manager,
		cache:        c,
		diagLog:      diagLog,
		logger:       logger,
		defaultModel: settings.DefaultModel,
	}
}

// DefaultModel returns the current session default model key.
func (s *Server) DefaultModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultModel
}

func (s *Server) setDefaultModel(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.defaultModel
	s.defaultModel = key
	return old
}

// Register adds every Argus tool to the MCP server.
func (s *Server) Register(m *mcp.Server) {
	s.registerVerifyCode(m)
	s.registerListModels(m)
	s.registerSetDefaultModel(m)
	s.registerCacheStats(m)
	s.registerDiagnose(m)

	s.logger.Info().
		Str("default_model", s.DefaultModel()).
		Strs("enabled_models", s.registry.EnabledKeys()).
		Msg("tools registered")
}

// Run serves MCP over stdio until the context is canceled or the client
// disconnects. Logs go to stderr; stdout carries the protocol.
func (s *Server) Run(ctx context.Context) error {
	m := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s.Register(m)

	s.logger.Info().Str("version", serverVersion).Msg("serving on stdio")
	if err := m.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// textResult wraps rendered markdown as a tool result.
func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// modelInfo is the structured entry of the list_models payload.
type modelInfo struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	Enabled         bool    `json:"enabled"`
	CostInputPer1K  float64 `json:"cost_input_per_1k"`
	CostOutputPer1K float64 `json:"cost_output_per_1k"`
	MaxTokens       int     `json:"max_tokens"`
}

type listModelsPayload struct {
	Models       []modelInfo `json:"models"`
	DefaultModel string      `json:"default_model"`
}

func (s *Server) registerListModels(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "list_models",
		Description: "Shows all available AI models for code verification: key, provider, enablement, cost per 1K tokens, context size, and the current default model.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, listModelsPayload, error) {
		models := s.registry.All()
		payload := listModelsPayload{
			Models:       make([]modelInfo, 0, len(models)),
			DefaultModel: s.DefaultModel(),
		}
		for _, mc := range models {
			payload.Models = append(payload.Models, modelInfo{
				Key:             mc.Key,
				Name:            mc.Name,
				Provider:        string(mc.Provider),
				Enabled:         mc.Enabled,
				CostInputPer1K:  mc.CostInputPer1K,
				CostOutputPer1K: mc.CostOutputPer1K,
				MaxTokens:       mc.MaxTokens,
			})
		}
		return textResult(render.ModelsTable(models, payload.DefaultModel), false), payload, nil
	})
}

// setDefaultArgs is the set_default_model tool input.
type setDefaultArgs struct {
	Model string `json:"model"`
}

type setDefaultPayload struct {
	OldModel  string `json:"old_model"`
	NewModel  string `json:"new_model"`
	ModelName string `json:"model_name"`
}

func (s *Server) registerSetDefaultModel(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "set_default_model",
		Description: "Sets the default model for the current session. Subsequent verifications use it unless a model is named explicitly.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input setDefaultArgs) (*mcp.CallToolResult, setDefaultPayload, error) {
		cfg, ok := s.registry.Get(input.Model)
		if !ok || !cfg.Enabled {
			msg := fmt.Sprintf("Model '%s' not available. Enabled models: %s", input.Model, strings.Join(s.registry.EnabledKeys(), ", "))
			return textResult("❌ Error: "+msg, true), setDefaultPayload{}, nil
		}

		old := s.setDefaultModel(input.Model)
		s.logger.Info().Str("old", old).Str("new", input.Model).Msg("session default model changed")

		payload := setDefaultPayload{OldModel: old, NewModel: input.Model, ModelName: cfg.Name}
		return textResult(render.DefaultChanged(old, input.Model, cfg.Name), false), payload, nil
	})
}

type cacheStatsPayload struct {
	Cache cache.Stats `json:"cache"`
}

func (s *Server) registerCacheStats(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Shows verification result cache statistics: enablement, current and maximum size, and entry TTL.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, cacheStatsPayload, error) {
		stats := s.cache.GetStats()
		return textResult(render.CacheStats(stats), false), cacheStatsPayload{Cache: stats}, nil
	})
}
