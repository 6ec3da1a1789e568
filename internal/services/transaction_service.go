package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
	"tiketbus/internal/metrics"
	"tiketbus/internal/queue"
	"tiketbus/internal/repositories"
	"tiketbus/internal/utils"
)

const maxCodeAttempts = 5

// TransactionService turns a confirmed payment into a ticket plus its
// settlement side effects. Idempotent on provider_txn_id: the tickets unique
// constraint, not a pre-check, decides races.
type TransactionService struct {
	TicketRepo  repositories.TicketRepository
	CodeRepo    repositories.PaymentCodeRepository
	CompanyRepo repositories.CompanyRepository
	RouteRepo   repositories.RouteRepository

	Audit     *queue.AuditBatcher
	Transfers *queue.TransferQueue

	PlatformAccountID string
	RequestID         string

	Now          func() time.Time
	GenerateCode func() string // test hook, defaults to a random 6 digit code
}

// Process handles one payment confirmation. Everything up to ticket creation
// is safe to retry; failures in the side-effect steps are logged/audited and
// never fail the caller once the ticket exists.
func (s TransactionService) Process(ctx context.Context, conf models.PaymentConfirmation) (models.Ticket, error) {
	if utils.TrimOrEmpty(conf.ProviderTxnID) == "" {
		return models.Ticket{}, domain.ValidationError{Field: "provider_txn_id", Msg: "wajib diisi"}
	}
	if conf.Amount <= 0 {
		return models.Ticket{}, domain.ValidationError{Field: "amount", Msg: "nominal tidak valid"}
	}

	// step 1: at-least-once delivery, answer duplicates from the store
	if existing, err := s.TicketRepo.GetByProviderTxnID(ctx, conf.ProviderTxnID); err == nil {
		metrics.ConfirmationsDuplicateTotal.Inc()
		utils.LogEvent(s.RequestID, "transaction", "process",
			"duplicate confirmation txn="+conf.ProviderTxnID+" ticket_id="+strconv.FormatInt(existing.ID, 10))
		return existing, nil
	} else if !domain.IsNotFound(err) {
		return models.Ticket{}, domain.InternalError{Msg: "gagal cek idempotensi", Err: err}
	}

	// step 2: resolve the payment code; a spent code is a conflict, not a miss
	payCode, err := s.CodeRepo.GetByCode(ctx, utils.TrimOrEmpty(conf.Code))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Ticket{}, domain.NotFoundError{Resource: "payment code", Err: err}
		}
		return models.Ticket{}, domain.InternalError{Msg: "gagal memuat payment code", Err: err}
	}
	if payCode.Status == models.PaymentCodeStatusExhausted || payCode.Exhausted() {
		if payCode.Status != models.PaymentCodeStatusExhausted {
			// counts ran out before the status flip landed
			if err := s.CodeRepo.MarkExhausted(ctx, payCode.ID); err != nil {
				utils.LogEvent(s.RequestID, "transaction", "process", "mark exhausted warning: "+err.Error())
			}
		}
		return models.Ticket{}, domain.ConflictError{Resource: "payment code", Msg: "kuota kode sudah habis"}
	}

	// step 3: commission rate and fare, fetched concurrently
	company, route, err := s.resolvePricing(ctx, payCode.CompanyID, payCode.RouteID)
	if err != nil {
		return models.Ticket{}, err
	}
	// compare at cent precision, JSON decoding may leave float noise
	if route.Fare > 0 && utils.Round2(conf.Amount) != utils.Round2(route.Fare) {
		return models.Ticket{}, domain.ValidationError{Field: "amount",
			Msg: fmt.Sprintf("nominal %s tidak sesuai tarif %s", utils.FormatMoney(conf.Amount), utils.FormatMoney(route.Fare))}
	}

	// step 4
	commission, _ := utils.ComputeCommission(conf.Amount, company.CommissionRate)

	// step 5: insert; the unique constraint resolves redelivery races
	ticket, err := s.createTicket(ctx, conf, payCode, commission)
	if err != nil {
		return models.Ticket{}, err
	}

	// side effects past this point never roll the ticket back

	// step 6
	if ok, err := s.CodeRepo.IncrementUsage(ctx, payCode.ID); err != nil {
		utils.LogEvent(s.RequestID, "transaction", "process", "increment usage failed: "+err.Error())
	} else if !ok {
		utils.LogEvent(s.RequestID, "transaction", "process",
			"payment code "+payCode.Code+" raced to exhaustion after ticket "+strconv.FormatInt(ticket.ID, 10))
	}

	// step 7
	s.enqueueSideEffects(ticket, company)

	metrics.TicketsIssuedTotal.Inc()
	return ticket, nil
}

func (s TransactionService) resolvePricing(ctx context.Context, companyID, routeID int64) (models.Company, models.Route, error) {
	var (
		wg         sync.WaitGroup
		company    models.Company
		route      models.Route
		companyErr error
		routeErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		company, companyErr = s.CompanyRepo.GetByID(ctx, companyID)
	}()
	go func() {
		defer wg.Done()
		route, routeErr = s.RouteRepo.GetByID(ctx, routeID)
	}()
	wg.Wait()

	if companyErr != nil {
		if domain.IsNotFound(companyErr) {
			return company, route, domain.NotFoundError{Resource: "company", Err: companyErr}
		}
		return company, route, domain.InternalError{Msg: "gagal memuat perusahaan", Err: companyErr}
	}
	if routeErr != nil {
		if domain.IsNotFound(routeErr) {
			return company, route, domain.NotFoundError{Resource: "route", Err: routeErr}
		}
		return company, route, domain.InternalError{Msg: "gagal memuat rute", Err: routeErr}
	}
	return company, route, nil
}

// createTicket inserts with a fresh OTP, retrying code collisions. A
// duplicate on provider_txn_id is the idempotent-success case and returns
// the winner's row.
func (s TransactionService) createTicket(ctx context.Context, conf models.PaymentConfirmation, payCode models.PaymentCode, commission float64) (models.Ticket, error) {
	ticket := models.Ticket{
		CompanyID:        payCode.CompanyID,
		RouteID:          payCode.RouteID,
		PassengerPhone:   utils.TrimOrEmpty(conf.PayerContact),
		Amount:           conf.Amount,
		CommissionAmount: commission,
		Status:           models.TicketStatusPending,
		ProviderTxnID:    conf.ProviderTxnID,
		CreatedAt:        s.now(),
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		ticket.Code = s.generateCode()

		id, err := s.TicketRepo.Create(ctx, ticket)
		if err == nil {
			ticket.ID = id
			return ticket, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateTicket) {
			return models.Ticket{}, domain.InternalError{Msg: "gagal membuat tiket", Err: err}
		}

		// either another delivery of the same confirmation won, or the OTP collided
		if existing, rerr := s.TicketRepo.GetByProviderTxnID(ctx, conf.ProviderTxnID); rerr == nil {
			metrics.ConfirmationsDuplicateTotal.Inc()
			return existing, nil
		}
	}

	return models.Ticket{}, domain.InternalError{Msg: "gagal menghasilkan kode tiket unik"}
}

func (s TransactionService) enqueueSideEffects(ticket models.Ticket, company models.Company) {
	audit := func(ev models.AuditEvent) bool {
		if s.Audit == nil {
			return false
		}
		s.Audit.Enqueue(ev)
		return true
	}

	if !audit(models.AuditEvent{
		CompanyID: ticket.CompanyID,
		Action:    "ticket_issued",
		Details: map[string]any{
			"ticket_id":       ticket.ID,
			"route_id":        ticket.RouteID,
			"amount":          ticket.Amount,
			"commission":      ticket.CommissionAmount,
			"provider_txn_id": ticket.ProviderTxnID,
		},
	}) {
		utils.LogEvent(s.RequestID, "transaction", "process", "audit batcher not configured, event lost")
	}

	if ticket.CommissionAmount <= 0 || utils.TrimOrEmpty(company.SettlementAccountID) == "" {
		return
	}

	if s.Transfers == nil {
		// settlement scheduling failure must be visible, never fatal
		utils.LogEvent(s.RequestID, "transaction", "process", "transfer queue not configured")
		audit(models.AuditEvent{
			CompanyID: ticket.CompanyID,
			Action:    "commission_transfer_enqueue_failed",
			Details:   map[string]any{"ticket_id": ticket.ID, "amount": ticket.CommissionAmount},
		})
		return
	}

	s.Transfers.Enqueue(models.CommissionTransfer{
		ID:            fmt.Sprintf("tf-%d-%d", ticket.ID, s.now().UnixNano()),
		FromAccountID: company.SettlementAccountID,
		ToAccountID:   s.PlatformAccountID,
		Amount:        ticket.CommissionAmount,
		Reference:     strconv.FormatInt(ticket.ID, 10),
	})
}

func (s TransactionService) generateCode() string {
	if s.GenerateCode != nil {
		return s.GenerateCode()
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func (s TransactionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}
