package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/craftlab/skillforge/pkg/entities"
)

// newService builds the entity service from configuration. Flags and
// environment override the config file; absent values fall back to the
// default JSON store under ~/.skillforge/entities.
func newService(ctx context.Context) (*entities.Service, error) {
	config, err := entities.DefaultConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build default store config")
	}
	if storeType := viper.GetString("store_type"); storeType != "" {
		config.StoreType = storeType
	}
	if basePath := viper.GetString("base_path"); basePath != "" {
		config.BasePath = basePath
	}

	store, err := entities.NewStore(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open entity store")
	}
	return entities.NewService(store), nil
}
