package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "tiketbus/internal/config"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
	"tiketbus/internal/utils"
)

type OperatorRepository struct {
	DB *sql.DB
}

func (r OperatorRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByID reads an operator with its assigned route list (CSV column).
func (r OperatorRepository) GetByID(ctx context.Context, id int64) (models.Operator, error) {
	var op models.Operator
	var routesCSV string
	err := r.db().QueryRowContext(ctx, `
		SELECT id,
		       COALESCE(company_id,0),
		       COALESCE(name,''),
		       COALESCE(status,''),
		       COALESCE(assigned_routes,'')
		FROM operators
		WHERE id=? LIMIT 1`, id).Scan(
		&op.ID,
		&op.CompanyID,
		&op.Name,
		&op.Status,
		&routesCSV,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Operator{}, domain.NotFoundError{Resource: "operator", Err: err}
		}
		return models.Operator{}, err
	}
	op.RouteIDs = utils.SplitIDList(routesCSV)
	return op, nil
}
