package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidUser = errors.New("invalid user id")
)
