package engine

import "errors"

// Sentinel errors for expected race outcomes and guard failures.
// Use errors.Is to check. None of these indicate a broken session: a losing
// resolution path consumes them internally and mutates nothing.
var (
	ErrSessionInactive = errors.New("engine: no active session")
	ErrNotReady        = errors.New("engine: no open trial to resolve")
	ErrTrialResolved   = errors.New("engine: trial already resolved")
	ErrResolutionBusy  = errors.New("engine: resolution already in flight")
)
