package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"systrack/console/internal/cache"
	"systrack/console/internal/config"
	"systrack/console/internal/engine"
	"systrack/console/internal/metrics"
	"systrack/console/internal/middleware"
	"systrack/console/internal/models"
	"systrack/console/internal/scan"
	"systrack/console/internal/session"
	"systrack/console/internal/upstream"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	sessions *session.Store
	engine   *engine.Engine
	scanner  *scan.Manager
	lookup   *scan.Lookup
	api      *upstream.Client
	cache    *redis.Client
	metrics  *metrics.Collector
	limiter  *middleware.RateLimiter
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	sessions *session.Store,
	eng *engine.Engine,
	scanner *scan.Manager,
	lookup *scan.Lookup,
	api *upstream.Client,
	cacheClient *redis.Client,
	collector *metrics.Collector,
	limiter *middleware.RateLimiter,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		engine:   eng,
		scanner:  scanner,
		lookup:   lookup,
		api:      api,
		cache:    cacheClient,
		metrics:  collector,
		limiter:  limiter,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	auth.POST("/login", h.limiter.Middleware(), h.Login)
	auth.POST("/signup", h.limiter.Middleware(), h.Signup)

	// Reset links arrive by mail; the holder has no session yet.
	router.POST("/employees/reset-password", h.limiter.Middleware(), h.ResetPassword)

	authed := router.Group("/auth")
	authed.Use(middleware.Auth(h.cfg, h.sessions))
	authed.POST("/logout", h.Logout)
	authed.GET("/session", h.Session)

	console := router.Group("")
	console.Use(
		middleware.Auth(h.cfg, h.sessions),
		middleware.Gate(models.RoleSuperAdmin, h.api, h.sessions, h.log),
	)

	parts := console.Group("/parts")
	parts.GET("", h.ListParts)
	parts.GET("/free", h.FreeParts)
	parts.GET("/unusable", h.UnusableParts)
	parts.POST("", h.CreatePart)
	parts.PUT("/:id", h.UpdatePart)
	parts.DELETE("/:id", h.DeletePart)

	systems := console.Group("/systems")
	systems.GET("", h.ListSystems)
	systems.GET("/stats", h.Stats)
	systems.GET("/logs", h.Logs)
	systems.POST("", h.CreateSystem)
	systems.GET("/:id/parts", h.SystemParts)
	systems.PUT("/:id", h.UpdateSystem)
	systems.POST("/:id/assign", h.AssignSystem)
	systems.PATCH("/:id/unassign", h.UnassignSystem)
	systems.PUT("/:id/remove-part/:partId", h.RemovePart)

	employees := console.Group("/employees")
	employees.GET("", h.ListEmployees)
	employees.GET("/unassigned", h.UnassignedEmployees)
	employees.POST("", h.CreateEmployee)
	employees.PUT("/:id", h.UpdateEmployee)
	employees.DELETE("/:id", h.DeleteEmployee)

	scans := console.Group("/scan/sessions")
	scans.POST("", h.StartScan)
	scans.POST("/:id/frames", h.SubmitScanFrame)
	scans.GET("/:id", h.GetScan)
	scans.DELETE("/:id", h.StopScan)
}

// listQueryFrom reads the standard list parameters; page defaults to
// the first, limit to the configured page size.
func (h HandlerSet) listQueryFrom(c *gin.Context) cache.ListQuery {
	q := cache.ListQuery{
		Search: c.Query("search"),
		Page:   1,
		Limit:  h.cfg.Cache.DefaultPageSize,
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	return q
}
