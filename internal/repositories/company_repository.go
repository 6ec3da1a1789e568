package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "tiketbus/internal/config"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
)

type CompanyRepository struct {
	DB *sql.DB
}

func (r CompanyRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByID reads commission rate, settlement account and suspension status.
func (r CompanyRepository) GetByID(ctx context.Context, id int64) (models.Company, error) {
	var c models.Company
	err := r.db().QueryRowContext(ctx, `
		SELECT id,
		       COALESCE(name,''),
		       COALESCE(status,''),
		       COALESCE(commission_rate,0),
		       COALESCE(settlement_account_id,'')
		FROM companies
		WHERE id=? LIMIT 1`, id).Scan(
		&c.ID,
		&c.Name,
		&c.Status,
		&c.CommissionRate,
		&c.SettlementAccountID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Company{}, domain.NotFoundError{Resource: "company", Err: err}
		}
		return models.Company{}, err
	}
	return c, nil
}
