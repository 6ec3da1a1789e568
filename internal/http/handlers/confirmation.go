package handlers

import (
	"net/http"
	"strings"

	"tiketbus/internal/domain/models"
	"tiketbus/internal/http/middleware"
	"tiketbus/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/payments/confirmation
// Provider webhook, delivered at least once; idempotent on provider_txn_id.
func (h Handler) ProcessConfirmation(c *gin.Context) {
	var conf models.PaymentConfirmation
	if !BindJSONOrError(c, &conf) {
		return
	}
	reqID := middleware.GetRequestID(c)

	if !strings.EqualFold(strings.TrimSpace(conf.Status), "success") {
		settlement := services.SettlementService{
			Gateway: h.Gateway,
			Breaker: h.Breaker,
			Audit:   h.Audit,
		}
		settlement.HandleFailedConfirmation(c.Request.Context(), conf)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "pembayaran tidak berhasil",
		})
		return
	}

	svc := services.TransactionService{
		Audit:             h.Audit,
		Transfers:         h.Transfers,
		PlatformAccountID: h.Env.PlatformAccountID,
		RequestID:         reqID,
	}

	ticket, err := svc.Process(c.Request.Context(), conf)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"ticket_id": ticket.ID,
	})
}
