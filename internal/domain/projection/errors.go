package projection

import "errors"

// Sentinel kinds for projection errors.
var (
	ErrInvalidTables = errors.New("invalid milestone tables")
)
