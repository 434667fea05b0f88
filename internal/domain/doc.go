// Package domain holds the core types shared across the relay: wire frames,
// emotion labels, and the ports the relay depends on (classifier, stats).
//
// It is intentionally dependency-free; every other internal package imports it.
package domain
