package services

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"tiketbus/internal/cache"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
	"tiketbus/internal/metrics"
	"tiketbus/internal/queue"
	"tiketbus/internal/repositories"
	"tiketbus/internal/utils"
)

var ticketCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidationService flips exactly one pending ticket to used per code. The
// conditional update in TicketRepository.MarkUsed is the only mutual
// exclusion; everything before it is load shedding.
type ValidationService struct {
	TicketRepo repositories.TicketRepository
	AuthCache  *cache.AuthCache
	Audit      *queue.AuditBatcher
	RequestID  string
	Now        func() time.Time
}

// Validate marks the pending ticket matching (operator's company, code) as
// used. Duplicate and late validations return ConflictError, never an
// internal error; they are expected under load.
func (s ValidationService) Validate(ctx context.Context, operatorID int64, code string) (int64, error) {
	code = utils.TrimOrEmpty(code)
	if !ticketCodePattern.MatchString(code) {
		metrics.ValidationsTotal.WithLabelValues("invalid_code").Inc()
		return 0, domain.ValidationError{Field: "code", Msg: "kode harus 6 digit"}
	}
	if operatorID <= 0 {
		return 0, domain.UnauthorizedError{Msg: "operator tidak dikenal"}
	}

	auth, err := s.AuthCache.Get(ctx, operatorID)
	if err != nil {
		if domain.IsNotFound(err) {
			metrics.ValidationsTotal.WithLabelValues("unauthorized").Inc()
			return 0, domain.UnauthorizedError{Resource: "operator", Msg: "tidak terdaftar", Err: err}
		}
		return 0, domain.InternalError{Msg: "gagal memuat otorisasi operator", Err: err}
	}
	if !auth.Active() {
		metrics.ValidationsTotal.WithLabelValues("unauthorized").Inc()
		return 0, domain.UnauthorizedError{Resource: "operator", Msg: "akun atau perusahaan ditangguhkan"}
	}

	ticket, err := s.TicketRepo.FindPending(ctx, auth.CompanyID, code)
	if err != nil {
		if domain.IsNotFound(err) {
			return 0, s.classifyMiss(ctx, auth.CompanyID, code)
		}
		return 0, domain.InternalError{Msg: "gagal mencari tiket", Err: err}
	}

	if !auth.AllowsRoute(ticket.RouteID) {
		metrics.ValidationsTotal.WithLabelValues("unauthorized").Inc()
		return 0, domain.UnauthorizedError{Resource: "operator", Msg: "tidak ditugaskan di rute ini"}
	}

	won, err := s.TicketRepo.MarkUsed(ctx, ticket.ID, auth.CompanyID, operatorID, s.now())
	if err != nil {
		return 0, domain.InternalError{Msg: "gagal memvalidasi tiket", Err: err}
	}
	if !won {
		// another validator raced us to the conditional update
		metrics.ValidationsTotal.WithLabelValues("already_validated").Inc()
		return 0, domain.ConflictError{Resource: "ticket", Msg: "tiket sudah divalidasi"}
	}

	metrics.ValidationsTotal.WithLabelValues("success").Inc()
	utils.LogEvent(s.RequestID, "validation", "validate",
		"ticket_id="+strconv.FormatInt(ticket.ID, 10)+" operator_id="+strconv.FormatInt(operatorID, 10))

	if s.Audit != nil {
		s.Audit.Enqueue(models.AuditEvent{
			CompanyID: auth.CompanyID,
			ActorID:   operatorID,
			Action:    "ticket_validated",
			Details: map[string]any{
				"ticket_id": ticket.ID,
				"route_id":  ticket.RouteID,
			},
		})
	}

	return ticket.ID, nil
}

// classifyMiss distinguishes a used ticket from a code that never existed.
func (s ValidationService) classifyMiss(ctx context.Context, companyID int64, code string) error {
	existing, err := s.TicketRepo.FindByCode(ctx, companyID, code)
	if err == nil && existing.Status == models.TicketStatusUsed {
		metrics.ValidationsTotal.WithLabelValues("already_validated").Inc()
		return domain.ConflictError{Resource: "ticket", Msg: "tiket sudah divalidasi"}
	}
	metrics.ValidationsTotal.WithLabelValues("invalid_code").Inc()
	return domain.NotFoundError{Resource: "ticket"}
}

func (s ValidationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}
