package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"tiketbus/internal/cache"
	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
	"tiketbus/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func activeAuthCache(companyID int64, routeIDs []int64) *cache.AuthCache {
	c := cache.NewAuthCache(repositories.OperatorRepository{}, repositories.CompanyRepository{}, 5*time.Minute)
	c.Fetch = func(ctx context.Context, operatorID int64) (models.OperatorAuthorization, error) {
		return models.OperatorAuthorization{
			OperatorID:     operatorID,
			CompanyID:      companyID,
			RouteIDs:       routeIDs,
			OperatorStatus: models.StatusActive,
			CompanyStatus:  models.StatusActive,
		}, nil
	}
	return c
}

func suspendedAuthCache(companyID int64) *cache.AuthCache {
	c := cache.NewAuthCache(repositories.OperatorRepository{}, repositories.CompanyRepository{}, 5*time.Minute)
	c.Fetch = func(ctx context.Context, operatorID int64) (models.OperatorAuthorization, error) {
		return models.OperatorAuthorization{
			OperatorID:     operatorID,
			CompanyID:      companyID,
			OperatorStatus: models.StatusSuspended,
			CompanyStatus:  models.StatusActive,
		}, nil
	}
	return c
}

func ticketColumns() []string {
	return []string{
		"id", "company_id", "route_id", "code", "passenger_phone",
		"amount", "commission_amount", "status", "provider_txn_id",
		"validated_by", "created_at", "used_at",
	}
}

func pendingTicketRow(id, companyID, routeID int64, code string) *sqlmock.Rows {
	return sqlmock.NewRows(ticketColumns()).AddRow(
		id, companyID, routeID, code, "0800",
		15000.0, 375.0, models.TicketStatusPending, "txn-1",
		0, time.Now(), nil,
	)
}

func newValidationService(t *testing.T, authCache *cache.AuthCache) (ValidationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := ValidationService{
		TicketRepo: repositories.TicketRepository{DB: db},
		AuthCache:  authCache,
		Now:        func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
	}
	return svc, mock
}

func TestValidateSuccess(t *testing.T) {
	svc, mock := newValidationService(t, activeAuthCache(5, nil))

	mock.ExpectQuery("SELECT (.+) FROM tickets").
		WithArgs(int64(5), "123456", models.TicketStatusPending).
		WillReturnRows(pendingTicketRow(77, 5, 9, "123456"))
	mock.ExpectExec("UPDATE tickets").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ticketID, err := svc.Validate(context.Background(), 1, "123456")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if ticketID != 77 {
		t.Fatalf("unexpected ticket id %d", ticketID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestValidateLostRaceReturnsConflict(t *testing.T) {
	svc, mock := newValidationService(t, activeAuthCache(5, nil))

	mock.ExpectQuery("SELECT (.+) FROM tickets").
		WillReturnRows(pendingTicketRow(77, 5, 9, "123456"))
	// a concurrent validator flipped the status between read and write
	mock.ExpectExec("UPDATE tickets").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Validate(context.Background(), 1, "123456")
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if domain.IsInternal(err) {
		t.Fatalf("a lost race must never be an internal error")
	}
}

func TestValidateAlreadyUsedTicket(t *testing.T) {
	svc, mock := newValidationService(t, activeAuthCache(5, nil))

	mock.ExpectQuery("SELECT (.+) FROM tickets").
		WithArgs(int64(5), "123456", models.TicketStatusPending).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM tickets").
		WithArgs(int64(5), "123456").
		WillReturnRows(sqlmock.NewRows(ticketColumns()).AddRow(
			77, 5, 9, "123456", "0800",
			15000.0, 375.0, models.TicketStatusUsed, "txn-1",
			3, time.Now(), time.Now(),
		))

	_, err := svc.Validate(context.Background(), 1, "123456")
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for used ticket, got %v", err)
	}
}

func TestValidateUnknownCode(t *testing.T) {
	svc, mock := newValidationService(t, activeAuthCache(5, nil))

	mock.ExpectQuery("SELECT (.+) FROM tickets").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM tickets").WillReturnError(sql.ErrNoRows)

	_, err := svc.Validate(context.Background(), 1, "123456")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidateRejectsBadCodeFormat(t *testing.T) {
	svc, _ := newValidationService(t, activeAuthCache(5, nil))

	for _, code := range []string{"", "12345", "1234567", "abc123"} {
		if _, err := svc.Validate(context.Background(), 1, code); !domain.IsValidation(err) {
			t.Fatalf("code %q: expected validation error, got %v", code, err)
		}
	}
}

func TestValidateSuspendedOperator(t *testing.T) {
	svc, _ := newValidationService(t, suspendedAuthCache(5))

	_, err := svc.Validate(context.Background(), 1, "123456")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestValidateOperatorNotAssignedToRoute(t *testing.T) {
	svc, mock := newValidationService(t, activeAuthCache(5, []int64{1, 2}))

	mock.ExpectQuery("SELECT (.+) FROM tickets").
		WillReturnRows(pendingTicketRow(77, 5, 9, "123456"))

	_, err := svc.Validate(context.Background(), 1, "123456")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for unassigned route, got %v", err)
	}
}
