package cache

import (
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/infrastructure/config"
)

// OwnerLockerFactory creates owner lockers based on configuration
type OwnerLockerFactory struct {
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// OwnerLockerFactoryOption is a functional option for configuring the factory
type OwnerLockerFactoryOption func(*OwnerLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) OwnerLockerFactoryOption {
	return func(f *OwnerLockerFactory) {
		f.logger = logger
	}
}

// NewOwnerLockerFactory creates a new factory
func NewOwnerLockerFactory(cfg config.RedisConfig, opts ...OwnerLockerFactoryOption) *OwnerLockerFactory {
	f := &OwnerLockerFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when Redis is enabled and reachable,
// otherwise an in-memory locker. In-memory locks do not serialize imports
// across instances.
func (f *OwnerLockerFactory) CreateLocker() OwnerLocker {
	if f.redisConfig.Enabled {
		locker, err := NewRedisOwnerLocker(RedisLockConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
		if err == nil {
			f.logger.Info("using redis owner locker",
				zap.String("addr", f.redisConfig.Addr()))
			return locker
		}
		f.logger.Warn("redis unavailable, falling back to in-memory owner locker",
			zap.Error(err))
	}
	return NewInMemoryOwnerLocker()
}
