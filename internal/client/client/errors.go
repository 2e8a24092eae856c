package client

import "errors"

var (
	ErrUnavailable  = errors.New("controller unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTimeout      = errors.New("no feature received in time")
)
