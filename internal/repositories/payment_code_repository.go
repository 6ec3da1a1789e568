package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "tiketbus/internal/config"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
)

type PaymentCodeRepository struct {
	DB *sql.DB
}

func (r PaymentCodeRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByCode resolves a payment code by its code value regardless of status.
// The caller tells an exhausted code apart from one that never existed.
func (r PaymentCodeRepository) GetByCode(ctx context.Context, code string) (models.PaymentCode, error) {
	var p models.PaymentCode
	err := r.db().QueryRowContext(ctx, `
		SELECT id,
		       COALESCE(company_id,0),
		       COALESCE(route_id,0),
		       COALESCE(code,''),
		       COALESCE(total_uses,0),
		       COALESCE(used_count,0),
		       COALESCE(status,'')
		FROM payment_codes
		WHERE code=? LIMIT 1`, code).Scan(
		&p.ID,
		&p.CompanyID,
		&p.RouteID,
		&p.Code,
		&p.TotalUses,
		&p.UsedCount,
		&p.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentCode{}, domain.NotFoundError{Resource: "payment code", Err: err}
		}
		return models.PaymentCode{}, err
	}
	return p, nil
}

// IncrementUsage bumps used_count and flips status to exhausted in the same
// statement when the budget is reached. The status predicate keeps the
// increment from racing past total_uses.
func (r PaymentCodeRepository) IncrementUsage(ctx context.Context, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE payment_codes
		SET used_count = used_count + 1,
		    status = IF(used_count >= total_uses, ?, status)
		WHERE id=? AND status=? AND used_count < total_uses`,
		models.PaymentCodeStatusExhausted, id, models.PaymentCodeStatusActive)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// MarkExhausted force-flips an over-budget code so later confirmations are
// rejected at the lookup.
func (r PaymentCodeRepository) MarkExhausted(ctx context.Context, id int64) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE payment_codes SET status=? WHERE id=?`,
		models.PaymentCodeStatusExhausted, id)
	return err
}
