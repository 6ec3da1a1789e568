package services

import (
	"context"
	"errors"
	"fmt"

	"tiketbus/internal/domain"
	"tiketbus/internal/domain/models"
	"tiketbus/internal/gateway"
	"tiketbus/internal/metrics"
	"tiketbus/internal/queue"
	"tiketbus/internal/resilience"
	"tiketbus/internal/utils"
)

// SettlementService executes drained commission batches against the payment
// provider, one transfer per item, every call through the circuit breaker.
// It is the TransferProcessor the queue is constructed with.
type SettlementService struct {
	Gateway *gateway.PaymentClient
	Breaker *resilience.CircuitBreaker
	Audit   *queue.AuditBatcher
}

// ProcessBatch returns an error when any item failed; the queue then
// re-enqueues the whole batch. Replays are safe because the provider
// deduplicates on the transfer reference (ticket id).
func (s SettlementService) ProcessBatch(ctx context.Context, batch []models.CommissionTransfer) error {
	var failed []error

	for _, t := range batch {
		transfer := t
		err := s.Breaker.Execute(func() error {
			_, callErr := s.Gateway.CreateInternalTransfer(ctx,
				transfer.FromAccountID, transfer.ToAccountID, transfer.Amount, transfer.Reference)
			return callErr
		})
		s.publishBreakerState()
		if err != nil {
			if errors.Is(err, resilience.ErrCircuitOpen) {
				err = domain.UnavailableError{Service: "payment provider", Err: err}
			}
			failed = append(failed, fmt.Errorf("transfer %s (ref %s): %w", transfer.ID, transfer.Reference, err))
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

// PermanentFailure records a dead-lettered transfer so administrators can
// settle it manually. Wired as the queue's OnPermanentFailure hook.
func (s SettlementService) PermanentFailure(t models.CommissionTransfer) {
	utils.LogEvent("", "settlement", "permanent_failure",
		"transfer "+t.ID+" ref="+t.Reference+" amount="+utils.FormatMoney(t.Amount))
	if s.Audit == nil {
		return
	}
	s.Audit.Enqueue(models.AuditEvent{
		Action: "commission_transfer_failed",
		Details: map[string]any{
			"transfer_id": t.ID,
			"reference":   t.Reference,
			"from":        t.FromAccountID,
			"to":          t.ToAccountID,
			"amount":      t.Amount,
			"retries":     t.RetryCount,
		},
	})
}

func (s SettlementService) publishBreakerState() {
	switch s.Breaker.State() {
	case resilience.StateOpen:
		metrics.CircuitBreakerState.Set(2)
	case resilience.StateHalfOpen:
		metrics.CircuitBreakerState.Set(1)
	default:
		metrics.CircuitBreakerState.Set(0)
	}
}

// HandleFailedConfirmation audits a non-success confirmation and refunds the
// payer when the provider reports the funds as captured anyway. Best effort:
// a provider outage here only delays the refund, the webhook still answers.
func (s SettlementService) HandleFailedConfirmation(ctx context.Context, conf models.PaymentConfirmation) {
	details := map[string]any{
		"provider_txn_id": conf.ProviderTxnID,
		"amount":          conf.Amount,
		"status":          conf.Status,
	}

	var status gateway.TransactionStatus
	err := s.Breaker.Execute(func() error {
		var callErr error
		status, callErr = s.Gateway.VerifyTransaction(ctx, conf.ProviderTxnID)
		return callErr
	})
	s.publishBreakerState()

	if err == nil && status.Captured {
		refundErr := s.Breaker.Execute(func() error {
			_, callErr := s.Gateway.ProcessRefund(ctx, conf.ProviderTxnID, status.Amount, "failed confirmation with captured funds")
			return callErr
		})
		s.publishBreakerState()
		details["refunded"] = refundErr == nil
		if refundErr != nil {
			details["refund_error"] = refundErr.Error()
			utils.LogEvent("", "settlement", "refund", "refund failed for "+conf.ProviderTxnID+": "+refundErr.Error())
		}
	} else if err != nil {
		details["verify_error"] = err.Error()
	}

	if s.Audit != nil {
		s.Audit.Enqueue(models.AuditEvent{
			Action:  "payment_confirmation_failed",
			Details: details,
		})
	}
}
