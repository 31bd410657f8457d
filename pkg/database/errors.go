package database

import "errors"

var (
	// ErrConnection reports that no usable store handle exists for the call:
	// nothing is bound, the connect attempt failed, or the session is closed.
	ErrConnection = errors.New("database connection unavailable")
)
