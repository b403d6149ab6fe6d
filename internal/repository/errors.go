package repository

import "errors"

// ErrNotFound indicates the requested record does not exist. Expired reset
// tokens surface as ErrNotFound as well, on purpose.
var ErrNotFound = errors.New("repository: not found")
