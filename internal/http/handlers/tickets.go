package handlers

import (
	"net/http"
	"strconv"

	"tiketbus/internal/http/middleware"
	"tiketbus/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/tickets/:id/receipt
func (h Handler) GetTicketReceiptPDF(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", err)
		return
	}

	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := svc.GenerateReceipt(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
