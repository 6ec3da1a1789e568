package handlers

import (
	"tiketbus/internal/cache"
	intconfig "tiketbus/internal/config"
	"tiketbus/internal/gateway"
	"tiketbus/internal/queue"
	"tiketbus/internal/resilience"
)

// Handler carries the long-lived dependencies shared by every request;
// request-scoped service values are built per call with the request id.
type Handler struct {
	Env       intconfig.Env
	AuthCache *cache.AuthCache
	Audit     *queue.AuditBatcher
	Transfers *queue.TransferQueue
	Breaker   *resilience.CircuitBreaker
	Gateway   *gateway.PaymentClient
}
