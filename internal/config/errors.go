package config

import "errors"

var (
	// ErrInvalidConfig wraps validation failures: empty addr, an event_stage
	// outside 1..3, non-positive queue or worker sizes, or an event_start
	// that is not RFC3339.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading the LETOKENS_CONFIG file or the
	// LETOKENS_ environment.
	ErrLoadConfig = errors.New("load config failed")
)
