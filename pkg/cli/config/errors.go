package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for profile validation
var (
	ErrProfileNotFound = goerr.New("profile file not found")
	ErrInvalidProfile  = goerr.New("invalid profile")
	ErrInvalidDuration = goerr.New("invalid duration")
)
