package handlers

import (
	"net/http"

	intconfig "tiketbus/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /api/health
func (h Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/db-check
func (h Handler) DBCheck(c *gin.Context) {
	if err := intconfig.EnsureDB(h.Env); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "database tidak terjangkau", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/queues/stats — settlement visibility for administrators.
func (h Handler) QueueStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"transfer_queue_depth": h.Transfers.Depth(),
		"audit_queue_depth":    h.Audit.Depth(),
		"auth_cache_entries":   h.AuthCache.Len(),
		"payment_breaker":      h.Breaker.State(),
	})
}
