package services

import "errors"

var (
	// ErrDrawInProgress is returned when another settlement holds the draw lock
	ErrDrawInProgress = errors.New("draw already in progress")
	// ErrConfigNotFound is returned when the SystemConfig singleton has not been initialised
	ErrConfigNotFound = errors.New("system config not initialised")
	// ErrInvalidConfig is returned for configuration values that break an invariant
	ErrInvalidConfig = errors.New("invalid system config")
	// ErrValidation is returned for malformed requests
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for an unknown operator or a wrong API key
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")
)
