package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "tiketbus/internal/config"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

type TicketRepository struct {
	DB *sql.DB
}

func (r TicketRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const ticketColumns = `id,
       COALESCE(company_id,0),
       COALESCE(route_id,0),
       COALESCE(code,''),
       COALESCE(passenger_phone,''),
       COALESCE(amount,0),
       COALESCE(commission_amount,0),
       COALESCE(status,''),
       COALESCE(provider_txn_id,''),
       COALESCE(validated_by,0),
       created_at,
       used_at`

func scanTicket(row *sql.Row) (models.Ticket, error) {
	var t models.Ticket
	var usedAt sql.NullTime
	if err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.RouteID,
		&t.Code,
		&t.PassengerPhone,
		&t.Amount,
		&t.CommissionAmount,
		&t.Status,
		&t.ProviderTxnID,
		&t.ValidatedBy,
		&t.CreatedAt,
		&usedAt,
	); err != nil {
		return models.Ticket{}, err
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return t, nil
}

// GetByProviderTxnID returns the ticket created for a provider transaction,
// or NotFoundError when none exists.
func (r TicketRepository) GetByProviderTxnID(ctx context.Context, providerTxnID string) (models.Ticket, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE provider_txn_id=? LIMIT 1`, providerTxnID)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, err
	}
	return t, nil
}

// FindPending locates the unique pending ticket for (company, code).
func (r TicketRepository) FindPending(ctx context.Context, companyID int64, code string) (models.Ticket, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE company_id=? AND code=? AND status=? LIMIT 1`,
		companyID, code, models.TicketStatusPending)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, err
	}
	return t, nil
}

// FindByCode relaxes the status filter; used to tell "already used" apart
// from "never existed".
func (r TicketRepository) FindByCode(ctx context.Context, companyID int64, code string) (models.Ticket, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE company_id=? AND code=?
		ORDER BY id DESC LIMIT 1`, companyID, code)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, err
	}
	return t, nil
}

// MarkUsed performs the conditional status flip. The predicate re-asserts
// status='pending' so concurrent validators get exactly one winner; the
// boolean result is false when another validator won first.
func (r TicketRepository) MarkUsed(ctx context.Context, ticketID, companyID, operatorID int64, at time.Time) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE tickets
		SET status=?, validated_by=?, used_at=?
		WHERE id=? AND company_id=? AND status=?`,
		models.TicketStatusUsed, operatorID, at,
		ticketID, companyID, models.TicketStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ErrDuplicateTicket marks an insert that lost a race on one of the tickets
// unique keys (provider_txn_id, or company_id+code while pending).
var ErrDuplicateTicket = errors.New("duplicate ticket")

// Create inserts a new pending ticket. A duplicate-key failure is returned
// as ErrDuplicateTicket so the caller can re-read instead of failing; the
// unique constraint, not a pre-check, is the idempotency mechanism.
func (r TicketRepository) Create(ctx context.Context, t models.Ticket) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO tickets
			(company_id, route_id, code, passenger_phone, amount, commission_amount, status, provider_txn_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.CompanyID, t.RouteID, t.Code, t.PassengerPhone,
		t.Amount, t.CommissionAmount, models.TicketStatusPending,
		t.ProviderTxnID, t.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return 0, ErrDuplicateTicket
		}
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID fetches a ticket by primary key regardless of status.
func (r TicketRepository) GetByID(ctx context.Context, id int64) (models.Ticket, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE id=? LIMIT 1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, err
	}
	return t, nil
}
