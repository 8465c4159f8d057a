package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/career-passport/pkg/logger"
	"github.com/prohmpiriya/career-passport/pkg/middleware"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

// RouterConfig holds the handlers and middleware wired into the router
type RouterConfig struct {
	Health   *HealthHandler
	Events   *EventHandler
	Messages *MessageHandler
	Matches  *MatchHandler
	Passport *PassportHandler

	Logger       *logger.Logger
	Metrics      *telemetry.Metrics
	AllowOrigins []string
	// Auth guards write routes when set
	Auth gin.HandlerFunc
	// Limiter throttles apply and message posts when set
	Limiter *middleware.RateLimiter
}

// NewRouter builds the gin engine with every route under /api
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(cfg.Metrics),
		middleware.AccessLog(cfg.Logger),
		middleware.CORS(cfg.AllowOrigins...),
	)

	r.GET("/health", cfg.Health.Health)
	r.GET("/ready", cfg.Health.Ready)

	write := chain(cfg.Auth)
	limited := chain(cfg.Auth, limiterHandler(cfg.Limiter))

	api := r.Group("/api")

	events := api.Group("/events")
	{
		events.GET("", cfg.Events.List)
		events.POST("", append(write, cfg.Events.Create)...)
		events.GET("/applications", cfg.Events.ListWalletApplications)
		events.PATCH("/applications/:applicationId/status", append(write, cfg.Events.UpdateApplicationStatus)...)
		events.GET("/:eventId", cfg.Events.Get)
		events.PATCH("/:eventId", append(write, cfg.Events.Update)...)
		events.DELETE("/:eventId", append(write, cfg.Events.Delete)...)
		events.POST("/:eventId/apply", append(limited, cfg.Events.Apply)...)
		events.GET("/:eventId/applications", cfg.Events.ListApplications)
	}

	messages := api.Group("/messages")
	{
		messages.GET("", cfg.Messages.List)
		messages.POST("", append(limited, cfg.Messages.Send)...)
		messages.PATCH("/:messageId/read", append(write, cfg.Messages.MarkRead)...)
	}

	matches := api.Group("/matches")
	{
		matches.GET("", cfg.Matches.List)
		matches.POST("", append(write, cfg.Matches.Create)...)
		matches.PATCH("/:matchId/status", append(write, cfg.Matches.UpdateStatus)...)
	}

	passport := api.Group("/passport/:walletAddress")
	{
		passport.GET("/stamps", cfg.Passport.Stamps)
		passport.GET("/nfts", cfg.Passport.NFTs)
		passport.GET("/eligibility", cfg.Passport.Eligibility)
	}

	return r
}

func limiterHandler(l *middleware.RateLimiter) gin.HandlerFunc {
	if l == nil {
		return nil
	}
	return l.Handler()
}

// chain drops nil handlers. The result has no spare capacity, so each
// append below gets its own backing array.
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out[:len(out):len(out)]
}
