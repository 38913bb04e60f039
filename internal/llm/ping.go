package llm

import (
	"context"
	"time"
)

const pingTimeout = 10 * time.Second

// Ping sends a minimal one-token request to the model's API to test
// connectivity. It never retries; the classified failure (or nil) feeds the
// diagnostics report.
func (c *Caller) Ping(ctx context.Context) *Failure {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	messages := []chatMessage{{Role: "user", Content: "Hi"}}
	_, failure := c.call(ctx, messages, 0, 5)
	return failure
}
