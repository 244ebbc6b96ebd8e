package fleet

import "errors"

var (
	// ErrMissingTimeRange means a record batch carried no valid timestamps,
	// so no session can be assigned to it.
	ErrMissingTimeRange = errors.New("batch has no valid time range")
)
