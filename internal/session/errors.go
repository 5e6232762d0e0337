package session

import "errors"

// ErrNotFound is returned by With for an unknown or expired session.
var ErrNotFound = errors.New("session not found")
