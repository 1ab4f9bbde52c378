package storage

import (
	"context"
	"fmt"

	"github.com/hailam/powerchess/internal/config"
)

// Open returns the store selected by cfg, or nil when the kind is none. An
// empty badger path uses the platform data directory.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Kind {
	case "", config.StoreNone:
		return nil, nil
	case config.StoreBadger:
		open := OpenDefault
		if cfg.Path != "" {
			open = func() (*BadgerStore, error) { return OpenBadger(cfg.Path) }
		}
		s, err := open()
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		s, err := DialRedis(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Kind)
}
