package models

import "time"

// Account statuses shared by operators and companies.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Operator validates tickets on behalf of a company at a park/terminal.
type Operator struct {
	ID        int64   `json:"id"`
	CompanyID int64   `json:"company_id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	RouteIDs  []int64 `json:"route_ids"`
}

// Company is a tenant selling routes on the platform.
type Company struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Status              string  `json:"status"`
	CommissionRate      float64 `json:"commission_rate"` // percent, 0-100
	SettlementAccountID string  `json:"settlement_account_id"`
}

// Route is a company's bus route with a fixed fare.
type Route struct {
	ID          int64   `json:"id"`
	CompanyID   int64   `json:"company_id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Fare        float64 `json:"fare"`
	Status      string  `json:"status"`
}

// OperatorAuthorization is the combined cache entry used to short-circuit
// suspended operators/companies before the validator. Advisory only: the
// conditional ticket update remains the correctness guarantee.
type OperatorAuthorization struct {
	OperatorID     int64     `json:"operator_id"`
	CompanyID      int64     `json:"company_id"`
	RouteIDs       []int64   `json:"route_ids"`
	OperatorStatus string    `json:"operator_status"`
	CompanyStatus  string    `json:"company_status"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Active reports whether both the operator and its company may validate.
func (a OperatorAuthorization) Active() bool {
	return a.OperatorStatus == StatusActive && a.CompanyStatus == StatusActive
}

// AllowsRoute reports whether the operator may validate tickets on a route.
// An empty assignment set means the operator covers all company routes.
func (a OperatorAuthorization) AllowsRoute(routeID int64) bool {
	if len(a.RouteIDs) == 0 {
		return true
	}
	for _, id := range a.RouteIDs {
		if id == routeID {
			return true
		}
	}
	return false
}
