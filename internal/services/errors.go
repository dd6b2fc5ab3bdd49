package services

import "errors"

// Report service errors
var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrInvalidRadius  = errors.New("window radius out of range")
	ErrNoWindowData   = errors.New("no data in window")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
