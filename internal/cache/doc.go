// Package cache provides an in-memory TTL cache for verification results.
//
// Entries are keyed by a SHA-256 fingerprint of the canonical request
// arguments plus the model key, so the same code checked through a different
// model is a distinct entry. Expired entries are treated as misses and
// dropped on read; once the cache is full the oldest entry is evicted.
//
// The fingerprint is computed by the dispatch layer with [Fingerprint]; the
// cache itself never inspects request contents.
package cache
