package entities

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/craftlab/skillforge/pkg/entities/sqlite"
)

// DefaultConfig returns the default repository configuration rooted under
// the user's home directory.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get home directory")
	}
	return &Config{
		StoreType: "json",
		BasePath:  filepath.Join(home, ".skillforge", "entities"),
	}, nil
}

// NewStore creates the Store implementation selected by the configuration.
func NewStore(ctx context.Context, config *Config) (Store, error) {
	if config == nil {
		var err error
		config, err = DefaultConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	switch config.StoreType {
	case "sqlite":
		return sqlite.NewStore(ctx, filepath.Join(config.BasePath, "entities.db"))
	case "json", "":
		return NewJSONStore(config.BasePath)
	default:
		return nil, errors.Errorf("unknown store type %q", config.StoreType)
	}
}
