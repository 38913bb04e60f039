// Package llm implements the model-call orchestration engine.
//
// A [Caller] performs single chat-completion requests against one configured
// model and classifies failures into tagged error kinds. Retryable HTTP
// failures are retried with capped exponential backoff. The [Manager] resolves
// and caches one caller per model and drives the primary-then-fallback sweep,
// collecting per-model failures and remediation hints when every model fails.
//
// HTTP clients are built per model with the model's configured timeout; tests
// redirect calls to local httptest servers by overriding the base URL.
package llm
