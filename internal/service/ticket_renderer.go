package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ticketa/ticketa/internal/domain"
)

// TicketRenderer renders a printable ticket document for a confirmed
// reservation. Implementations must not mutate their inputs; the bytes
// they return are streamed to the client unchanged.
type TicketRenderer interface {
	Render(ctx context.Context, reservation *domain.Reservation, event *domain.Event, user *domain.User) ([]byte, error)
}

// PDFTicketRenderer is the default TicketRenderer producing a one-page PDF
type PDFTicketRenderer struct{}

// NewPDFTicketRenderer creates a new PDFTicketRenderer
func NewPDFTicketRenderer() *PDFTicketRenderer {
	return &PDFTicketRenderer{}
}

// Render produces the ticket PDF
func (r *PDFTicketRenderer) Render(ctx context.Context, reservation *domain.Reservation, event *domain.Event, user *domain.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Ticketa Application", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Event Ticket", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, event.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Date: %s", event.Date.Format("Mon, 02 Jan 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Location: %s", event.Location), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Attendee", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Name: %s", user.Username), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Email: %s", user.Email), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Ticket Code", "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 10)
	pdf.MultiCell(0, 6, reservation.TicketCode, "1", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure PDFTicketRenderer implements TicketRenderer
var _ TicketRenderer = (*PDFTicketRenderer)(nil)
