package provider

import "errors"

// Sentinel kinds for provider errors.
var (
	// ErrInvalidDate is a configuration error: the date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrDecode means the upstream body was not the expected JSON shape.
	ErrDecode = errors.New("decode upstream payload")
)
