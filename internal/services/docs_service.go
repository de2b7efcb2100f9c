package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageName = "ticket-qr"

// TicketLoader fetches the ticket a document is rendered from.
type TicketLoader interface {
	GetByID(ctx context.Context, id int64) (models.Ticket, error)
}

// DocsService renders e-tickets and payment receipts as PDF.
type DocsService struct {
	Tickets TicketLoader
	Loader  func(ctx context.Context, id int64) (models.Ticket, error)
	Now     func() time.Time
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateETicket renders a CONFIRMED ticket with a scannable QR code.
func (s DocsService) GenerateETicket(ctx context.Context, ticketID int64) ([]byte, string, error) {
	t, err := s.loadConfirmed(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	utils.LogCtx(ctx, "docs", "generate_eticket", fmt.Sprintf("ticket_id=%d", ticketID))
	return buildETicketPDF(t)
}

func (s DocsService) GenerateInvoice(ctx context.Context, ticketID int64) ([]byte, string, error) {
	t, err := s.loadConfirmed(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	utils.LogCtx(ctx, "docs", "generate_invoice", fmt.Sprintf("ticket_id=%d", ticketID))
	return buildInvoicePDF(t, s.now())
}

func (s DocsService) loadConfirmed(ctx context.Context, id int64) (models.Ticket, error) {
	var (
		t   models.Ticket
		err error
	)
	switch {
	case s.Loader != nil:
		t, err = s.Loader(ctx, id)
	case s.Tickets != nil:
		t, err = s.Tickets.GetByID(ctx, id)
	default:
		return t, domain.InternalError{Msg: "ticket loader not configured"}
	}
	if err != nil {
		return t, err
	}
	if t.Status != models.TicketConfirmed {
		return t, domain.ConflictError{
			Resource: "ticket",
			Msg:      fmt.Sprintf("ticket %s is %s; documents are only issued for confirmed tickets", t.TicketNumber, t.Status),
		}
	}
	return t, nil
}

// ticketQRPayload is what gate staff scan.
func ticketQRPayload(t models.Ticket) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", t.TicketNumber, t.PNR, t.TrainID, utils.FormatDate(t.BookingDate), joinSeats(t.SeatNumbers))
}

func buildETicketPDF(t models.Ticket) ([]byte, string, error) {
	qr, err := qrcode.Encode(ticketQRPayload(t), qrcode.Medium, 256)
	if err != nil {
		return nil, "", fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(qr))
	pdf.ImageOptions(qrImageName, 150, 12, 45, 45, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket No   : %s", t.TicketNumber),
		fmt.Sprintf("PNR         : %s", safe(t.PNR, "-")),
		fmt.Sprintf("Passenger   : %s (%d)", safe(t.FullName, "-"), t.Age),
		fmt.Sprintf("Email       : %s", safe(t.Email, "-")),
		fmt.Sprintf("Phone       : %s", safe(t.Phone, "-")),
		fmt.Sprintf("Train       : %s (#%d)", safe(t.TrainName, "-"), t.TrainID),
		fmt.Sprintf("Route       : %s -> %s", safe(t.Source, "-"), safe(t.Destination, "-")),
		fmt.Sprintf("Journey     : %s %s", utils.FormatDate(t.BookingDate), safe(timeHM(t.DepartureTime), "-")),
		fmt.Sprintf("Class       : %s", t.SeatClass),
		fmt.Sprintf("Seats       : %s", safe(joinSeats(t.SeatNumbers), "-")),
		fmt.Sprintf("Fare        : %s", utils.FormatRupees(t.Amount)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Valid for %d passenger seat(s) on the journey date only. Carry a photo ID.", t.NoOfSeats()), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", utils.SafeFilenamePart(t.TicketNumber), utils.SafeFilenamePart(t.FullName))
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(t models.Ticket, issued time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := "INV-" + strings.TrimPrefix(t.TicketNumber, "TCKT-")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+issued.Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Order      : "+safe(t.OrderID, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Name  : %s", safe(t.FullName, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Email : %s", safe(t.Email, "-")))
	pdf.Ln(10)

	desc := fmt.Sprintf("%s %s -> %s on %s, %s seats %s",
		safe(t.TrainName, "-"), safe(t.Source, "-"), safe(t.Destination, "-"),
		utils.FormatDate(t.BookingDate), t.SeatClass, safe(joinSeats(t.SeatNumbers), "-"))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+desc, "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, fmt.Sprintf("Price per seat: %s x %d", utils.FormatRupees(t.PricePerSeat), t.NoOfSeats()))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total paid: "+utils.FormatRupees(t.Amount))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("INVOICE_%s.pdf", utils.SafeFilenamePart(t.TicketNumber))
	return buf.Bytes(), filename, nil
}

func joinSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, n := range seats {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}
