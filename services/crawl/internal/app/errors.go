package app

import "errors"

var (
	// ErrUnsupportedSource rejects a trigger for a source outside the fixed
	// set, before any fetch work starts.
	ErrUnsupportedSource = errors.New("unsupported source")
)
