package notify

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/pricing"
)

// BuildPriceListPDF renders the current catalog as a price-list table.
func BuildPriceListPDF(products []product.Product, at time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Price List", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Price List", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, at.Format("2 January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	colWidths := []float64{55, 25, 20, 25, 30, 25}
	headers := []string{"Product", "Code", "Unit", "Price", "Discount", "Selling Price"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, p := range products {
		discountLabel := "-"
		if d := pricing.ActiveDiscount(p, at); d != nil {
			if d.Type == product.DiscountPercentage {
				discountLabel = d.Value.String() + "%"
			} else {
				discountLabel = d.Value.StringFixed(2)
			}
		}
		pdf.CellFormat(colWidths[0], 6, p.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 6, p.Code, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 6, p.StockUnit, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 6, p.BasePrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 6, discountLabel, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], 6, pricing.EffectivePrice(p, at).StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
