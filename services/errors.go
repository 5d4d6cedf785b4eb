package services

import "errors"

// ErrNotFound is returned when a referenced record does not resolve. It is a
// business condition, kept distinct from infrastructure failures, which are
// wrapped and propagated as-is.
var ErrNotFound = errors.New("record not found")
