package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigLoadFailed wraps every error returned while loading or parsing a configuration.
	ErrConfigLoadFailed = errors.New("failed to load configuration")

	// ErrInvalidValue indicates a configuration value outside its allowed range or format.
	ErrInvalidValue = errors.New("config value invalid")

	// ErrNoServers indicates a configuration without any server entries.
	ErrNoServers = errors.New("no servers configured")

	// ErrDuplicateServer indicates two server entries sharing an ID.
	ErrDuplicateServer = errors.New("duplicate server entry")
)

// NewErrInvalidValue returns an error for an invalid configuration value.
func NewErrInvalidValue(key string, value string) error {
	return fmt.Errorf("%w: '%s' (value: '%s')", ErrInvalidValue, key, value)
}
