package domain

// ID is used across domain entities.
type ID int64

// Status represents a lightweight state value.
type Status string

// RequestContext carries authenticated caller info when available.
type RequestContext struct {
	OperatorID ID     `json:"operatorId"`
	CompanyID  ID     `json:"companyId"`
	Role       string `json:"role"`
}
