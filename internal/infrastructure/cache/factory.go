package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/config"
)

// NewIdempotencyStore creates the idempotency store selected by configuration.
// The "redis" backend shares processed request keys across instances; the
// "memory" backend is for single-instance deployments.
func NewIdempotencyStore(cfg config.IdempotencyConfig, redisCfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Backend {
	case "redis":
		store, err := NewRedisIdempotencyStore(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
		}
		logger.Info("using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
		return store, nil
	case "memory", "":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}
