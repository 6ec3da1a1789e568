package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "tiketbus/internal/config"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByID reads the route fare used to price a confirmation.
func (r RouteRepository) GetByID(ctx context.Context, id int64) (models.Route, error) {
	var rt models.Route
	err := r.db().QueryRowContext(ctx, `
		SELECT id,
		       COALESCE(company_id,0),
		       COALESCE(origin,''),
		       COALESCE(destination,''),
		       COALESCE(fare,0),
		       COALESCE(status,'')
		FROM routes
		WHERE id=? LIMIT 1`, id).Scan(
		&rt.ID,
		&rt.CompanyID,
		&rt.Origin,
		&rt.Destination,
		&rt.Fare,
		&rt.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route", Err: err}
		}
		return models.Route{}, err
	}
	return rt, nil
}
