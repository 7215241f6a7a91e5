package config

import "errors"

var (
	// ErrConfigNotFound is returned when the config source cannot be read.
	ErrConfigNotFound = errors.New("config not found")
	// ErrConfigInvalid is returned when the config cannot be parsed or fails validation.
	ErrConfigInvalid = errors.New("config invalid")
)
