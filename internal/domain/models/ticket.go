package models

import "time"

// Ticket lifecycle statuses. A ticket enters "used" at most once.
const (
	TicketStatusPending   = "pending"
	TicketStatusUsed      = "used"
	TicketStatusExpired   = "expired"
	TicketStatusCancelled = "cancelled"
)

// Ticket is a single ride entitlement, scoped by company (tenant).
type Ticket struct {
	ID               int64      `json:"id"`
	CompanyID        int64      `json:"company_id"`
	RouteID          int64      `json:"route_id"`
	Code             string     `json:"code"` // one-time 6 digit code, unique per company while pending
	PassengerPhone   string     `json:"passenger_phone"`
	Amount           float64    `json:"amount"`
	CommissionAmount float64    `json:"commission_amount"`
	Status           string     `json:"status"`
	ProviderTxnID    string     `json:"provider_txn_id"`
	ValidatedBy      int64      `json:"validated_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
}

// PaymentConfirmation is the provider's webhook payload (at-least-once delivery).
type PaymentConfirmation struct {
	ProviderTxnID string  `json:"provider_txn_id"`
	Amount        float64 `json:"amount"`
	PayerContact  string  `json:"payer_contact"`
	Code          string  `json:"code"` // payment code (voucher), not the ticket OTP
	Status        string  `json:"status"`
}
