package di

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/career-passport/internal/handler"
	"github.com/prohmpiriya/career-passport/internal/publisher"
	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/config"
	"github.com/prohmpiriya/career-passport/pkg/logger"
	"github.com/prohmpiriya/career-passport/pkg/middleware"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

// Container holds all dependencies for the API
type Container struct {
	// Infrastructure
	Store     *repository.Store
	Cache     repository.SnapshotCache
	Publisher publisher.Publisher
	Limiter   *middleware.RateLimiter

	// Services
	EventService       service.EventService
	ApplicationService service.ApplicationService
	MessageService     service.MessageService
	MatchService       service.MatchService
	PassportService    service.PassportService

	// Handlers
	HealthHandler   *handler.HealthHandler
	EventHandler    *handler.EventHandler
	MessageHandler  *handler.MessageHandler
	MatchHandler    *handler.MatchHandler
	PassportHandler *handler.PassportHandler

	config  *config.Config
	logger  *logger.Logger
	metrics *telemetry.Metrics
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	Store  *repository.Store
	// Cache defaults to an in-process snapshot cache
	Cache repository.SnapshotCache
	// Publisher defaults to a no-op publisher
	Publisher publisher.Publisher
	// Chain is nil when no RPC endpoint is configured
	Chain   service.ChainReader
	Logger  *logger.Logger
	Metrics *telemetry.Metrics
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		Store:     cfg.Store,
		Cache:     cfg.Cache,
		Publisher: cfg.Publisher,
		config:    cfg.Config,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if c.Cache == nil {
		c.Cache = repository.NewMemorySnapshotCache()
	}
	if c.Publisher == nil {
		c.Publisher = publisher.Noop{}
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}

	hooks := service.Hooks{
		Publisher: c.Publisher,
		Metrics:   c.metrics,
		Logger:    c.logger,
	}

	// Initialize services
	c.EventService = service.NewEventService(c.Store.Events, hooks)
	c.ApplicationService = service.NewApplicationService(c.Store.Applications, hooks)
	c.MessageService = service.NewMessageService(c.Store.Messages, hooks)
	c.MatchService = service.NewMatchService(c.Store.Matches, hooks)
	c.PassportService = service.NewPassportService(cfg.Chain, c.Cache, service.PassportConfig{
		RetryDelay:   c.config.Chain.RetryDelay,
		CacheTTL:     c.config.Chain.CacheTTL,
		MaxStaleness: c.config.Chain.CacheMaxStaleness,
		MaxTokenScan: c.config.Chain.MaxTokenScan,
	}, hooks)

	// Initialize handlers
	opts := handler.Options{
		Logger:     c.logger,
		Production: c.config.IsProduction(),
	}
	c.HealthHandler = handler.NewHealthHandler(c.Store, c.config.App.Version, opts)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.ApplicationService, opts)
	c.MessageHandler = handler.NewMessageHandler(c.MessageService, opts)
	c.MatchHandler = handler.NewMatchHandler(c.MatchService, opts)
	c.PassportHandler = handler.NewPassportHandler(c.PassportService, c.config.Chain.RequestTimeout, opts)

	if c.config.RateLimit.RequestsPerSecond > 0 {
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = c.config.RateLimit.RequestsPerSecond
		limit.Burst = c.config.RateLimit.Burst
		c.Limiter = middleware.NewRateLimiter(limit)
	}

	return c
}

// Router builds the HTTP router
func (c *Container) Router() *gin.Engine {
	var auth gin.HandlerFunc
	if c.config.JWT.Enabled {
		auth = middleware.JWTMiddleware(&middleware.JWTConfig{
			Secret: c.config.JWT.Secret,
			Issuer: c.config.JWT.Issuer,
		})
	}

	return handler.NewRouter(handler.RouterConfig{
		Health:       c.HealthHandler,
		Events:       c.EventHandler,
		Messages:     c.MessageHandler,
		Matches:      c.MatchHandler,
		Passport:     c.PassportHandler,
		Logger:       c.logger,
		Metrics:      c.metrics,
		AllowOrigins: c.config.Server.AllowOrigins,
		Auth:         auth,
		Limiter:      c.Limiter,
	})
}

// Close stops background work owned by the container
func (c *Container) Close() {
	if c.Limiter != nil {
		c.Limiter.Stop()
	}
}
