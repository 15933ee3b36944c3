package core

import "errors"

// Errors
var (
	ErrInvalidSide     = errors.New("invalid side")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOrderExists     = errors.New("order exists")
)
