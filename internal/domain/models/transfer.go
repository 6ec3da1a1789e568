package models

import "time"

// CommissionTransfer moves the platform's commission share from a company
// account to the platform account. Reference is the ticket id so replays
// stay idempotent on the provider side.
type CommissionTransfer struct {
	ID            string    `json:"id"`
	FromAccountID string    `json:"from_account_id"`
	ToAccountID   string    `json:"to_account_id"`
	Amount        float64   `json:"amount"`
	Reference     string    `json:"reference"`
	RetryCount    int       `json:"retry_count"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}
