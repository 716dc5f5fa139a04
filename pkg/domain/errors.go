package domain

import "errors"

// ErrResultNotFound is returned when a cache key has no stored result.
var ErrResultNotFound = errors.New("result not found")

// ErrUnsupportedValue is returned when a decoded argument has no Value representation.
var ErrUnsupportedValue = errors.New("unsupported value")
