package api

import (
	stdhttp "net/http"

	"tiketbus/internal/cache"
	intconfig "tiketbus/internal/config"
	"tiketbus/internal/gateway"
	h "tiketbus/internal/http/handlers"
	"tiketbus/internal/http/middleware"
	"tiketbus/internal/queue"
	"tiketbus/internal/resilience"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the long-lived components the router exposes per route.
type Deps struct {
	Env       intconfig.Env
	AuthCache *cache.AuthCache
	Audit     *queue.AuditBatcher
	Transfers *queue.TransferQueue
	Breaker   *resilience.CircuitBreaker
	Limiter   *resilience.RateLimiter
	Gateway   *gateway.PaymentClient
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(), middleware.Identity(deps.Env.JWTSecret))

	_ = r.SetTrustedProxies(nil)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := h.Handler{
		Env:       deps.Env,
		AuthCache: deps.AuthCache,
		Audit:     deps.Audit,
		Transfers: deps.Transfers,
		Breaker:   deps.Breaker,
		Gateway:   deps.Gateway,
	}

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/db-check", handler.DBCheck)
		api.GET("/queues/stats", handler.QueueStats)

		auth := api.Group("/auth")
		auth.POST("/login", handler.Login)
		auth.POST("/register", handler.Register)

		limited := api.Group("")
		limited.Use(middleware.RateLimit(deps.Limiter))
		limited.POST("/validate", handler.ValidateTicket)
		limited.POST("/payments/confirmation", handler.ProcessConfirmation)

		tickets := api.Group("/tickets")
		tickets.GET("/:id/receipt", handler.GetTicketReceiptPDF)
	}

	return r
}
