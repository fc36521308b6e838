package handler

import (
	"zold-node/internal/adapter/http/middleware"
	"zold-node/internal/core/ports"
	"zold-node/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Ledger         ports.LedgerService
	RateLimiter    ports.RateLimiter // nil = rate limiting disabled
	PushRateRule   middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Metrics        *metrics.Metrics   // nil = no HTTP metrics
	Gatherer       prometheus.Gatherer
	MaxBodyBytes   int64
	Version        string
	Title          string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(homeTemplate)

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	info := NewInfoHandler(deps.Version, deps.Title)
	r.GET("/", info.Home)
	r.GET("/version", info.Version)
	r.GET("/robots.txt", info.Robots)
	r.GET("/health", HealthCheck(deps.Version, deps.HealthCheckers...))

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	var pushLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil && deps.PushRateRule.Limit > 0 {
		pushLimit = middleware.RateLimiter(deps.RateLimiter, "push", deps.PushRateRule, deps.Logger)
	}

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	walletHandler := NewWalletHandler(deps.Ledger, deps.Logger)
	wallets := r.Group("/wallets")
	{
		wallets.GET("/:id", walletHandler.Pull)
		wallets.PUT("/:id", pushLimit, middleware.MaxBodySize(maxBody), walletHandler.Push)
		wallets.GET("/:id/balance", walletHandler.Balance)
	}

	return r
}
