package media

import "errors"

var (
	// ErrProberUnavailable indicates the metadata prober is not configured.
	ErrProberUnavailable = errors.New("media prober unavailable")
)
