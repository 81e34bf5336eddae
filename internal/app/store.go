package app

import (
	"context"
	"fmt"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/filestore"
	"github.com/vk/stepflow/internal/inmemorystore"
	"github.com/vk/stepflow/internal/pgstore"
	"github.com/vk/stepflow/internal/redisstore"
	"github.com/vk/stepflow/internal/workflowstore"
)

// openStore connects the backend selected by s.Driver.
func openStore(ctx context.Context, s config.Storage) (workflowstore.Store, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Opening workflow store.", "driver", s.Driver)

	switch s.Driver {
	case config.DriverMemory:
		return inmemorystore.New(), nil
	case config.DriverFile:
		store, err := filestore.New(s.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverRedis:
		store, err := redisstore.New(ctx, redisstore.Options{
			Address:   s.Address,
			Password:  s.Password,
			DB:        s.DB,
			KeyPrefix: s.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := pgstore.New(ctx, s.DSN, s.Table)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", workflowstore.ErrUnknownDriver, s.Driver)
	}
}
