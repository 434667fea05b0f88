// Package emotion implements the classification port: an HTTP client for a
// hosted text-classification model plus composable wrappers for caching
// (redis) and failure isolation (circuit breaker).
//
// Composition in main is HTTPClassifier → BreakerClassifier →
// CachedClassifier, so cache hits bypass the breaker entirely.
package emotion
