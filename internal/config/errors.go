package config

import "errors"

var (
	ErrLoad    = errors.New("config: failed to load")
	ErrInvalid = errors.New("config: invalid configuration")
)
