package server

import (
	"context"
	"fmt"

	"github.com/famnudger/fam/backend/config"
	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/logger"
)

// RegistryFetcher returns a registry table in YAML form.
type RegistryFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// LoadRegistry returns the built-in registry, or the S3 override when
// REGISTRY_S3_KEY is set. A broken override fails startup.
func LoadRegistry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*engine.Registry, error) {
	if cfg.RegistryKey == "" {
		return engine.DefaultRegistry()
	}
	store, err := config.NewRegistryStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return loadFrom(ctx, store, log)
}

func loadFrom(ctx context.Context, f RegistryFetcher, log *logger.Logger) (*engine.Registry, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := engine.LoadRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("invalid registry override: %w", err)
	}
	log.Info("loaded registry override", "entries", reg.Len())
	return reg, nil
}
