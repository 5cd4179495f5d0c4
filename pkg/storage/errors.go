package storage

import "errors"

// ErrInvalidUpdate is returned when an update carries no fields to change.
var ErrInvalidUpdate = errors.New("update has no fields")
