package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestGenerateReceiptProducesPDF(t *testing.T) {
	svc := DocsService{
		Loader: func(ctx context.Context, ticketID int64) (ticketDocData, error) {
			return ticketDocData{
				TicketID:       ticketID,
				Code:           "6****1",
				PassengerPhone: "0800",
				RouteFrom:      "Pekanbaru",
				RouteTo:        "Bangkinang",
				Amount:         15000,
				Status:         "pending",
				IssuedAt:       "2025-06-01 10:00:00",
			}, nil
		},
	}

	pdfBytes, filename, err := svc.GenerateReceipt(context.Background(), 42)
	if err != nil {
		t.Fatalf("generate receipt error: %v", err)
	}
	if filename != "RECEIPT_42.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestGenerateReceiptPropagatesLoaderError(t *testing.T) {
	wantErr := errors.New("ticket hilang")
	svc := DocsService{
		Loader: func(ctx context.Context, ticketID int64) (ticketDocData, error) {
			return ticketDocData{}, wantErr
		},
	}

	if _, _, err := svc.GenerateReceipt(context.Background(), 1); !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestMaskCode(t *testing.T) {
	if got := maskCode("654321"); got != "6****1" {
		t.Fatalf("maskCode(654321) = %q", got)
	}
	// anything that is not a 6 digit OTP passes through unchanged
	if got := maskCode("abc"); got != "abc" {
		t.Fatalf("maskCode(abc) = %q", got)
	}
}
