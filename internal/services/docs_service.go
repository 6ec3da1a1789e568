package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"tiketbus/internal/domain/models"
	"tiketbus/internal/repositories"
	"tiketbus/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService menghasilkan PDF e-receipt per tiket.
type DocsService struct {
	TicketRepo repositories.TicketRepository
	RouteRepo  repositories.RouteRepository
	RequestID  string
	Loader     func(ctx context.Context, ticketID int64) (ticketDocData, error)
}

type ticketDocData struct {
	TicketID       int64
	Code           string
	PassengerPhone string
	RouteFrom      string
	RouteTo        string
	Amount         float64
	Commission     float64
	Status         string
	IssuedAt       string
	ValidatedAt    string
}

// GenerateReceipt renders the e-receipt PDF for one ticket.
func (s DocsService) GenerateReceipt(ctx context.Context, ticketID int64) ([]byte, string, error) {
	data, err := s.loadTicketDocData(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("ticket_id=%d", ticketID))
	return buildReceiptPDF(data)
}

func (s DocsService) loadTicketDocData(ctx context.Context, ticketID int64) (ticketDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, ticketID)
	}

	t, err := s.TicketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return ticketDocData{}, err
	}

	out := ticketDocData{
		TicketID:       t.ID,
		Code:           maskCode(t.Code),
		PassengerPhone: t.PassengerPhone,
		Amount:         t.Amount,
		Commission:     t.CommissionAmount,
		Status:         t.Status,
		IssuedAt:       utils.FormatDateTime(t.CreatedAt),
	}
	if t.UsedAt != nil {
		out.ValidatedAt = utils.FormatDateTime(*t.UsedAt)
	}
	if route, err := s.RouteRepo.GetByID(ctx, t.RouteID); err == nil {
		out.RouteFrom = route.Origin
		out.RouteTo = route.Destination
	}
	if t.Status == models.TicketStatusUsed {
		// kode boleh tampil penuh setelah terpakai
		out.Code = t.Code
	}
	return out, nil
}

func buildReceiptPDF(d ticketDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-RECEIPT TIKET BUS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("No Tiket       : #%d", d.TicketID),
		fmt.Sprintf("Kode           : %s", safe(d.Code, "-")),
		fmt.Sprintf("No HP          : %s", safe(d.PassengerPhone, "-")),
		fmt.Sprintf("Rute           : %s -> %s", safe(d.RouteFrom, "-"), safe(d.RouteTo, "-")),
		fmt.Sprintf("Harga          : %s", utils.FormatMoney(d.Amount)),
		fmt.Sprintf("Status         : %s", safe(d.Status, "-")),
		fmt.Sprintf("Terbit         : %s", safe(d.IssuedAt, "-")),
	}
	if d.ValidatedAt != "" {
		lines = append(lines, fmt.Sprintf("Divalidasi     : %s", d.ValidatedAt))
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Catatan: Tunjukkan kode kepada petugas saat naik. Kode hanya berlaku satu kali.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%d.pdf", d.TicketID)
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// maskCode hides the middle digits of a still-pending OTP.
func maskCode(code string) string {
	if len(code) != 6 {
		return code
	}
	return code[:1] + "****" + code[5:]
}
