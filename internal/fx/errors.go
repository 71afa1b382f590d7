package fx

import "errors"

// Anomalies never propagate to gameplay callers; they label log lines and
// diagnostic counters.
var (
	ErrInvalidTarget    = errors.New("fx: target handle unknown to renderer")
	ErrCapacityExceeded = errors.New("fx: capacity exceeded, oldest entry evicted")
	ErrUnknownKind      = errors.New("fx: no update function for category/kind")
	ErrFeatureDisabled  = errors.New("fx: feature disabled")
)
