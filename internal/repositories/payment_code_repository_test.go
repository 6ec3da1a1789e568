package repositories

import (
	"context"
	"testing"

	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPaymentCodeRepo(t *testing.T) (PaymentCodeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return PaymentCodeRepository{DB: db}, mock
}

func TestGetByCode(t *testing.T) {
	repo, mock := newPaymentCodeRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM payment_codes").
		WithArgs("PROMO1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "route_id", "code", "total_uses", "used_count", "status",
		}).AddRow(3, 5, 9, "PROMO1", 3, 2, models.PaymentCodeStatusActive))

	p, err := repo.GetByCode(context.Background(), "PROMO1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if p.ID != 3 || p.TotalUses != 3 || p.UsedCount != 2 {
		t.Fatalf("unexpected payment code %+v", p)
	}
	if p.Exhausted() {
		t.Fatalf("code with budget left must not be exhausted")
	}
}

func TestGetByCodeReturnsExhaustedRows(t *testing.T) {
	repo, mock := newPaymentCodeRepo(t)

	// the lookup must not hide spent codes behind a status filter
	mock.ExpectQuery("SELECT (.+) FROM payment_codes").
		WithArgs("PROMO1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "route_id", "code", "total_uses", "used_count", "status",
		}).AddRow(3, 5, 9, "PROMO1", 3, 3, models.PaymentCodeStatusExhausted))

	p, err := repo.GetByCode(context.Background(), "PROMO1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if p.Status != models.PaymentCodeStatusExhausted || !p.Exhausted() {
		t.Fatalf("expected an exhausted code, got %+v", p)
	}
}

func TestGetByCodeNotFound(t *testing.T) {
	repo, mock := newPaymentCodeRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM payment_codes").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByCode(context.Background(), "NOPE")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIncrementUsageUnderBudget(t *testing.T) {
	repo, mock := newPaymentCodeRepo(t)

	mock.ExpectExec("UPDATE payment_codes").
		WithArgs(models.PaymentCodeStatusExhausted, int64(3), models.PaymentCodeStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.IncrementUsage(context.Background(), 3)
	if err != nil {
		t.Fatalf("increment error: %v", err)
	}
	if !ok {
		t.Fatalf("increment under budget should affect one row")
	}
}

func TestIncrementUsageRacedToExhaustion(t *testing.T) {
	repo, mock := newPaymentCodeRepo(t)

	// the status/budget predicate filtered the row out
	mock.ExpectExec("UPDATE payment_codes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.IncrementUsage(context.Background(), 3)
	if err != nil {
		t.Fatalf("increment error: %v", err)
	}
	if ok {
		t.Fatalf("an already exhausted code must report zero affected rows")
	}
}
