package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/arguslabs/argus/internal/config"
	"github.com/arguslabs/argus/internal/diag"
)

const (
	openrouterReferer = "https://github.com/arguslabs/argus"
	openrouterTitle   = "Argus Code Verifier"

	// maxErrorBodyLen bounds the response body carried in HTTP failures.
	maxErrorBodyLen = 300
)

// Caller verifies code through one configured model. Create callers through
// [Manager.Resolve] so instances are shared per model key.
type Caller struct {
	cfg    config.ModelConfig
	client *http.Client
	retry  RetryPolicy
	log    *diag.Log
}

// NewCaller builds a caller for the given model config. A disabled config or
// one without a credential fails here with a config error, before any network
// activity.
func NewCaller(cfg config.ModelConfig, retry RetryPolicy, log *diag.Log) (*Caller, error) {
	if !cfg.Enabled {
		return nil, &Failure{Kind: KindConfig, Message: fmt.Sprintf("model %s is not enabled (missing API key)", cfg.Key)}
	}
	if cfg.APIKey == "" {
		return nil, &Failure{Kind: KindConfig, Message: fmt.Sprintf("model %s has no API key", cfg.Key)}
	}
	return &Caller{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		retry:  retry,
		log:    log,
	}, nil
}

// Config returns the model config this caller was built from.
func (c *Caller) Config() config.ModelConfig { return c.cfg }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// call performs exactly one chat-completion request. It does not log and does
// not retry; failures come back classified.
func (c *Caller) call(ctx context.Context, messages []chatMessage, temperature float64, maxTokens int) (chatResponse, *Failure) {
	body := chatRequest{
		Model:       c.cfg.ModelID,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return chatResponse{}, &Failure{Kind: KindUnexpected, Message: "marshaling request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return chatResponse{}, &Failure{Kind: KindUnexpected, Message: "creating request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	for k, v := range providerHeaders(c.cfg.Provider) {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return chatResponse{}, c.classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatResponse{}, c.classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := string(respBody)
		if len(detail) > maxErrorBodyLen {
			detail = detail[:maxErrorBodyLen]
		}
		return chatResponse{}, &Failure{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API error: %d - %s", resp.StatusCode, detail),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return chatResponse{}, &Failure{Kind: KindUnexpected, Message: "parsing response: " + err.Error()}
	}
	if len(parsed.Choices) == 0 {
		return chatResponse{}, &Failure{Kind: KindUnexpected, Message: "no choices in response"}
	}
	return parsed, nil
}

// classifyTransport separates timeouts from dial/connect failures. The
// message wording feeds the remediation analysis, which matches on
// "timeout" and "connect".
func (c *Caller) classifyTransport(err error) *Failure {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Failure{Kind: KindTimeout, Message: fmt.Sprintf("request timeout after %s", c.cfg.Timeout)}
	}
	if errors.Is(err, context.Canceled) {
		return &Failure{Kind: KindUnexpected, Message: "request canceled"}
	}
	return &Failure{Kind: KindConnection, Message: "connection failed: " + err.Error()}
}

// cost computes the monetary cost of a response. Absent usage costs nothing.
func (c *Caller) cost(usage *Usage) float64 {
	if usage == nil {
		return 0.0
	}
	return float64(usage.TotalTokens) / 1000 * c.cfg.CostPer1K
}

// Verify runs the fixed system+user conversation through the model with
// retries and normalizes the result into an Outcome. Failures are recorded in
// the diagnostics log.
func (c *Caller) Verify(ctx context.Context, systemPrompt, userMessage string, temperature float64, maxTokens int) Outcome {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}

	resp, fail := c.callWithRetry(ctx, messages, temperature, maxTokens)
	if fail != nil {
		c.log.Record(c.cfg.Key, fail.Kind.String(), fail.Message, fail.StatusCode)
		return Outcome{
			Model:    c.cfg.Name,
			ModelKey: c.cfg.Key,
			Err:      fail,
		}
	}

	var usage Usage
	if resp.Usage != nil {
		usage = *resp.Usage
	}
	return Outcome{
		Success:  true,
		Verdict:  resp.Choices[0].Message.Content,
		Model:    c.cfg.Name,
		ModelKey: c.cfg.Key,
		Tokens:   usage,
		Cost:     c.cost(resp.Usage),
	}
}

// providerHeaders returns the extra identifying headers a provider requires
// beyond bearer auth. The switch is exhaustive over the closed provider set.
func providerHeaders(p config.Provider) map[string]string {
	switch p {
	case config.ProviderOpenRouter:
		return map[string]string{
			"HTTP-Referer": openrouterReferer,
			"X-Title":      openrouterTitle,
		}
	case config.ProviderZAI:
		return nil
	default:
		return nil
	}
}
