package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tiketbus/internal/domain"

	"github.com/google/uuid"
)

// PaymentClient talks to the external payment provider. Every call is
// bounded by the client timeout; non-2xx answers and timeouts surface as
// errors so the circuit breaker can count them.
type PaymentClient struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

func NewPaymentClient(baseURL, apiKey string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ProviderResult is the provider's acknowledgement for any operation.
type ProviderResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// TransactionStatus is the provider's view of a payment.
type TransactionStatus struct {
	ProviderTxnID string  `json:"provider_txn_id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Captured      bool    `json:"captured"`
}

// Balance reports an account's available funds.
type Balance struct {
	AccountID string  `json:"account_id"`
	Available float64 `json:"available"`
	Currency  string  `json:"currency"`
}

type transferRequest struct {
	FromAccountID   string  `json:"from_account_id"`
	ToAccountID     string  `json:"to_account_id"`
	Amount          float64 `json:"amount"`
	Reference       string  `json:"reference"`
	DeduplicationID string  `json:"deduplication_id"`
}

type refundRequest struct {
	ProviderTxnID   string  `json:"provider_txn_id"`
	Amount          float64 `json:"amount"`
	Reason          string  `json:"reason"`
	DeduplicationID string  `json:"deduplication_id"`
}

// VerifyTransaction fetches the provider's status for a transaction id.
func (c *PaymentClient) VerifyTransaction(ctx context.Context, providerTxnID string) (TransactionStatus, error) {
	var out TransactionStatus
	err := c.do(ctx, http.MethodGet, "/v1/transactions/"+providerTxnID, nil, &out)
	return out, err
}

// ProcessRefund refunds a captured payment. Reference (the txn id) doubles
// as dedup scope; the generated id guards against double submission.
func (c *PaymentClient) ProcessRefund(ctx context.Context, providerTxnID string, amount float64, reason string) (ProviderResult, error) {
	var out ProviderResult
	req := refundRequest{
		ProviderTxnID:   providerTxnID,
		Amount:          amount,
		Reason:          reason,
		DeduplicationID: uuid.NewString(),
	}
	err := c.do(ctx, http.MethodPost, "/v1/refunds", req, &out)
	return out, err
}

// GetBalance reads an account's balance.
func (c *PaymentClient) GetBalance(ctx context.Context, accountID string) (Balance, error) {
	var out Balance
	err := c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID+"/balance", nil, &out)
	return out, err
}

// CreateInternalTransfer moves commission between platform-managed accounts.
// Reference carries the ticket id so provider-side dedup makes batch replays
// safe.
func (c *PaymentClient) CreateInternalTransfer(ctx context.Context, fromAccountID, toAccountID string, amount float64, reference string) (ProviderResult, error) {
	var out ProviderResult
	req := transferRequest{
		FromAccountID:   fromAccountID,
		ToAccountID:     toAccountID,
		Amount:          amount,
		Reference:       reference,
		DeduplicationID: reference,
	}
	err := c.do(ctx, http.MethodPost, "/v1/transfers", req, &out)
	return out, err
}

func (c *PaymentClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.UnavailableError{Service: "payment provider", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return domain.UnavailableError{
			Service: "payment provider",
			Err:     fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payment provider rejected %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
