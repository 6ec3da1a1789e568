package models

// PaymentCode statuses.
const (
	PaymentCodeStatusActive    = "active"
	PaymentCodeStatusExhausted = "exhausted"
)

// PaymentCode is an operator-issued multi-use voucher bound to a route.
// Invariant: UsedCount <= TotalUses; at the budget it flips to exhausted.
type PaymentCode struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	RouteID   int64  `json:"route_id"`
	Code      string `json:"code"`
	TotalUses int    `json:"total_uses"`
	UsedCount int    `json:"used_count"`
	Status    string `json:"status"`
}

// Exhausted reports whether the usage budget is spent.
func (p PaymentCode) Exhausted() bool {
	return p.UsedCount >= p.TotalUses
}
