// Package diag holds small diagnostic helpers shared across the tracking
// driver and compositor: deduplicated warnings so a per-frame condition
// (e.g. repeated InsufficientFeatures) doesn't flood the log once per frame.
package diag

import (
	"log"
	"sync"
)

var warned sync.Map

// WarnOnce logs message via the standard logger the first time it's seen;
// later calls with the same message are silently dropped.
func WarnOnce(message string) {
	if _, loaded := warned.LoadOrStore(message, true); !loaded {
		log.Printf("WARNING: %s", message)
	}
}

// ResetWarnings clears the dedup set. Exposed for tests that need a clean
// slate between cases.
func ResetWarnings() {
	warned.Range(func(key, _ any) bool {
		warned.Delete(key)
		return true
	})
}
