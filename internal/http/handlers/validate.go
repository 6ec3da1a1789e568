package handlers

import (
	"net/http"

	"tiketbus/internal/http/middleware"
	"tiketbus/internal/services"

	"github.com/gin-gonic/gin"
)

type validateRequest struct {
	OperatorID int64  `json:"operator_id"`
	Code       string `json:"code"`
}

// POST /api/validate
// The operator comes from the bearer token when present; the body field
// exists for trusted internal callers.
func (h Handler) ValidateTicket(c *gin.Context) {
	var req validateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	operatorID := req.OperatorID
	if rc := middleware.GetRequestContext(c); rc.OperatorID > 0 {
		operatorID = int64(rc.OperatorID)
	}

	svc := services.ValidationService{
		AuthCache: h.AuthCache,
		Audit:     h.Audit,
		RequestID: middleware.GetRequestID(c),
	}

	ticketID, err := svc.Validate(c.Request.Context(), operatorID, req.Code)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"ticket_id": ticketID,
	})
}
