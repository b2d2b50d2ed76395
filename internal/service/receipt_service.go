package service

import (
	"bytes"
	"fmt"

	"mealplanner/internal/domain"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ReceiptService renders a PDF receipt for an order. The footer carries a QR
// code pointing at the restaurant's review page.
type ReceiptService struct {
	baseURL string
}

func NewReceiptService(baseURL string) *ReceiptService {
	return &ReceiptService{baseURL: baseURL}
}

func (s *ReceiptService) Render(order *domain.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%d", order.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, order.RestaurantName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt for order #%d", order.ID))
	pdf.Ln(6)
	pdf.Cell(0, 8, "Placed "+order.Details.PlacedAt.Format("Jan 2, 2006 3:04 PM"))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Fulfillment: %s", order.Details.DeliveryType))
	pdf.Ln(12)

	// Line items.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range order.Details.Items {
		pdf.CellFormat(90, 8, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", line.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(line.UnitPriceCents), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(line.LineTotalCents), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	charges := order.Details.Charges
	writeChargeRow(pdf, "Subtotal", charges.SubtotalCents)
	writeChargeRow(pdf, "Tax", charges.TaxCents)
	if charges.DeliveryFeeCents > 0 {
		writeChargeRow(pdf, "Delivery fee", charges.DeliveryFeeCents)
	}
	writeChargeRow(pdf, "Service fee", charges.ServiceFeeCents)
	if charges.TipCents > 0 {
		writeChargeRow(pdf, "Tip", charges.TipCents)
	}
	pdf.SetFont("Helvetica", "B", 12)
	writeChargeRow(pdf, "Total", charges.TotalCents)

	// Review QR code.
	reviewURL := fmt.Sprintf("%s/restaurants/%d/reviews?order=%d", s.baseURL, order.RestaurantID, order.ID)
	png, err := qrcode.Encode(reviewURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("review-qr",
		gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Enjoyed your meal? Scan to leave a review.")
	pdf.ImageOptions("review-qr", 10, pdf.GetY()+8, 30, 30, false,
		gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func writeChargeRow(pdf *gofpdf.Fpdf, label string, cents int64) {
	pdf.CellFormat(145, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, money(cents), "", 1, "R", false, 0, "")
}

func money(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
