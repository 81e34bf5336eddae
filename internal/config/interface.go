package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// LoadSettings reads the application settings file at path.
	LoadSettings(ctx context.Context, path string) (*Model, error)

	// LoadDefinition reads every workflow definition file found under the
	// given paths (files or directories) and merges them in discovery order.
	LoadDefinition(ctx context.Context, paths ...string) (*Definition, error)
}
