package repositories

import "errors"

// ErrNotFound is wrapped by all repositories when a lookup matches no row.
// Callers distinguish "absent" from infrastructure failures with errors.Is.
var ErrNotFound = errors.New("record not found")
