package llm

import (
	"context"
	"time"

	"github.com/arguslabs/argus/internal/config"
)

// RetryPolicy bounds retries for a single model's calls. Only HTTP failures
// with a status in Statuses are retried; timeouts, connection failures, and
// everything else get exactly one attempt.
type RetryPolicy struct {
	Attempts int
	MinWait  time.Duration
	MaxWait  time.Duration
	Statuses map[int]bool
}

// DefaultRetryPolicy returns the stock policy: 3 attempts, 1s-10s capped
// exponential backoff, retrying 429 and the usual 5xx gateway statuses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		MinWait:  time.Second,
		MaxWait:  10 * time.Second,
		Statuses: map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true},
	}
}

// PolicyFromSettings builds a RetryPolicy from runtime settings.
func PolicyFromSettings(s config.Settings) RetryPolicy {
	p := DefaultRetryPolicy()
	if s.RetryAttempts > 0 {
		p.Attempts = s.RetryAttempts
	}
	if s.RetryMinWait > 0 {
		p.MinWait = s.RetryMinWait
	}
	if s.RetryMaxWait > 0 {
		p.MaxWait = s.RetryMaxWait
	}
	if len(s.RetryStatusCodes) > 0 {
		p.Statuses = make(map[int]bool, len(s.RetryStatusCodes))
		for _, code := range s.RetryStatusCodes {
			p.Statuses[code] = true
		}
	}
	return p
}

// retryable reports whether a failure should consume another attempt.
func (p RetryPolicy) retryable(f *Failure) bool {
	return f.Kind == KindHTTP && p.Statuses[f.StatusCode]
}

// wait returns the backoff before the attempt after attempt i (0-indexed):
// min(MinWait * 2^i, MaxWait). No jitter.
func (p RetryPolicy) wait(attempt int) time.Duration {
	d := p.MinWait << uint(attempt)
	if d > p.MaxWait || d <= 0 {
		d = p.MaxWait
	}
	return d
}

// callWithRetry drives the single-call executor under the retry policy,
// returning the first success or the last failure once attempts are
// exhausted. The backoff sleep honors context cancellation.
func (c *Caller) callWithRetry(ctx context.Context, messages []chatMessage, temperature float64, maxTokens int) (chatResponse, *Failure) {
	var lastFail *Failure

	for attempt := 0; attempt < c.retry.Attempts; attempt++ {
		resp, fail := c.call(ctx, messages, temperature, maxTokens)
		if fail == nil {
			return resp, nil
		}
		lastFail = fail

		if !c.retry.retryable(fail) {
			return chatResponse{}, fail
		}
		if attempt == c.retry.Attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return chatResponse{}, &Failure{Kind: KindUnexpected, Message: "request canceled: " + ctx.Err().Error()}
		case <-time.After(c.retry.wait(attempt)):
		}
	}

	return chatResponse{}, lastFail
}
