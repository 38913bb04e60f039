package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arguslabs/argus/internal/llm"
	"github.com/arguslabs/argus/internal/render"
)

const (
	probeDetailLen        = 100
	probeConnectDetailLen = 50
)

func (s *Server) registerDiagnose(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "diagnose",
		Description: "Diagnoses API connectivity: credential presence per model, a live connection test to each provider, recent error history, and remediation recommendations.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, struct{}, error) {
		s.logger.Info().Str("tool", "diagnose").Msg("diagnostics requested")
		return textResult(s.Diagnose(ctx), false), struct{}{}, nil
	})
}

// Diagnose probes every model and renders the full diagnostics report.
func (s *Server) Diagnose(ctx context.Context) string {
	probes := s.probeModels(ctx)
	return render.DiagnosticsReport(s.registry.All(), probes, s.diagLog.List())
}

// probeModels tests connectivity to every registered model in declaration
// order. Disabled models are reported as skipped without network activity.
func (s *Server) probeModels(ctx context.Context) []render.Probe {
	var probes []render.Probe
	for _, m := range s.registry.All() {
		if !m.Enabled {
			probes = append(probes, render.Probe{ModelKey: m.Key, Status: render.ProbeSkipped})
			continue
		}

		caller, err := s.manager.Resolve(m.Key)
		if err != nil {
			probes = append(probes, render.Probe{ModelKey: m.Key, Status: render.ProbeError, Detail: clip(err.Error(), probeConnectDetailLen)})
			continue
		}

		probes = append(probes, probeResult(m.Key, caller.Ping(ctx)))
	}
	return probes
}

func probeResult(key string, failure *llm.Failure) render.Probe {
	if failure == nil {
		return render.Probe{ModelKey: key, Status: render.ProbeOK}
	}
	switch failure.Kind {
	case llm.KindHTTP:
		return render.Probe{
			ModelKey:   key,
			Status:     render.ProbeHTTPError,
			StatusCode: failure.StatusCode,
			Detail:     clip(failure.Message, probeDetailLen),
		}
	case llm.KindTimeout:
		return render.Probe{ModelKey: key, Status: render.ProbeTimeout}
	case llm.KindConnection:
		return render.Probe{ModelKey: key, Status: render.ProbeConnectError, Detail: clip(failure.Message, probeConnectDetailLen)}
	default:
		return render.Probe{ModelKey: key, Status: render.ProbeError, Detail: clip(failure.Message, probeConnectDetailLen)}
	}
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
