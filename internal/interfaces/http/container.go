package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/devicehub/devicehub/internal/infrastructure/auth"
	"github.com/devicehub/devicehub/internal/infrastructure/config"
	"github.com/devicehub/devicehub/internal/infrastructure/scheduler"
	"github.com/devicehub/devicehub/internal/interfaces/http/middleware"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases and handlers
// and wires them together. Shutdown releases what the container opened itself.
type Container struct {
	// Core infrastructure
	engine   *gin.Engine
	db       *gorm.DB
	cfg      *config.Config
	log      logger.Interface
	redis    redis.UniversalClient
	ownRedis bool
	registry *prometheus.Registry

	// Repositories, locks and caches
	infra *infrastructure

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	authMiddleware *middleware.AuthMiddleware
	jwtSvc         *auth.JWTService

	schedulerManager *scheduler.SchedulerManager
}

// Option customizes a Container before wiring
type Option func(*Container)

// WithRedisClient injects an existing Redis client instead of dialing cfg.Redis.
// The container does not close an injected client.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(c *Container) {
		c.redis = client
	}
}

// NewContainer wires every component. db may be nil when the memory driver is configured.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface, opts ...Option) (*Container, error) {
	c := &Container{
		engine:   gin.New(),
		db:       db,
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Section 1: Infrastructure - Redis, repositories, locks, report cache, metrics
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Use cases
	c.initUseCases()

	// Section 3: Handlers, middlewares and the reconciliation scheduler
	if err := c.initHandlers(); err != nil {
		c.closeRedis()
		return nil, err
	}

	return c, nil
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// SchedulerManager returns the reconciliation scheduler, nil when reconciliation is disabled
func (c *Container) SchedulerManager() *scheduler.SchedulerManager {
	return c.schedulerManager
}

// JWTService returns the token service used by the admin routes
func (c *Container) JWTService() *auth.JWTService {
	return c.jwtSvc
}

// Registry returns the Prometheus registry backing /metrics
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Shutdown stops the scheduler and closes the Redis client when the container dialed it
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}
	c.closeRedis()
}

func (c *Container) closeRedis() {
	if c.redis == nil || !c.ownRedis {
		return
	}
	if err := c.redis.Close(); err != nil {
		c.log.Warnw("failed to close redis client", "error", err)
	}
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}
