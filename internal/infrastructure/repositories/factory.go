package repositories

import (
	"context"

	"telecare/internal/core/ports"
	"telecare/internal/infrastructure/repositories/memory"
	redisrepo "telecare/internal/infrastructure/repositories/redis"
	"telecare/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories, backed by Redis when configured
// and reachable, by memory otherwise.
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// RedisClient returns the underlying client when Redis is in use, for
// components like the event bus and distributed locks that need it directly.
func (f *RepositoryFactory) RedisClient() (*redis.Client, bool) {
	return f.redisClient, f.useRedis && f.redisClient != nil
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisUserRepository(f.redisClient)
	}
	return memory.NewUserRepository()
}

func (f *RepositoryFactory) CreateDoctorRepository() ports.DoctorRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisDoctorRepository(f.redisClient)
	}
	return memory.NewDoctorRepository()
}

// CreateAppointmentRepository wraps the Redis-backed repository in a circuit
// breaker; bookings keep failing fast instead of piling up timeouts when
// Redis is down.
func (f *RepositoryFactory) CreateAppointmentRepository() ports.AppointmentRepository {
	if f.useRedis && f.redisClient != nil {
		return NewReliableAppointmentRepository(
			redisrepo.NewRedisAppointmentRepository(f.redisClient),
			f.logger,
		)
	}
	return memory.NewAppointmentRepository()
}

// Close closes the Redis connection if one is held.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck pings Redis when it is in use.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
