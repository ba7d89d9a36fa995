package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"laluna/internal/domain/order"
)

var monthNames = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// RenderPDF lays out a sales report on A4 portrait pages.
// Core fonts are cp1252, so labels stay ASCII.
func RenderPDF(title string, r *order.Reports) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title+" - Sales report", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Sales report - last %d months - generated %s",
		r.MonthsBack, r.GeneratedAt.In(time.UTC).Format("2006-01-02 15:04 MST")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Summary
	st := r.Statistics
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	summary := [][2]string{
		{"Total billed", money(st.TotalBilled)},
		{"Total collected", money(st.TotalCollected)},
		{"Outstanding", money(st.TotalOutstanding)},
		{"Orders", fmt.Sprintf("%d (%d paid, %d unpaid)", st.CountTotal, st.CountPaid, st.CountUnpaid)},
	}
	for _, row := range summary {
		pdf.CellFormat(50, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Monthly table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Monthly", "", 1, "L", false, 0, "")
	header(pdf, []string{"Month", "Billed", "Collected", "Orders", "Paid", "Unpaid"}, []float64{30, 40, 40, 25, 25, 25})
	pdf.SetFont("Arial", "", 10)
	for _, m := range r.Monthly {
		pdf.CellFormat(30, 8, fmt.Sprintf("%s %d", monthName(m.Month), m.Year), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, money(m.TotalBilled), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, money(m.TotalCollected), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprint(m.OrderCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprint(m.PaidCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprint(m.UnpaidCount), "1", 1, "C", false, 0, "")
	}
	if len(r.Monthly) == 0 {
		pdf.CellFormat(185, 8, "No orders in this period", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	// Top customers
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Top customers", "", 1, "L", false, 0, "")
	header(pdf, []string{"Customer", "Billed", "Collected", "Outstanding", "Orders"}, []float64{60, 35, 35, 35, 20})
	pdf.SetFont("Arial", "", 10)
	for _, c := range r.TopCustomers {
		pdf.CellFormat(60, 8, tr(c.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, money(c.TotalBilled), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(c.TotalCollected), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(c.TotalOutstanding), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprint(c.OrderCount), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func header(pdf *gofpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, col, "1", ln, "C", true, 0, "")
	}
}

func money(d decimal.Decimal) string {
	return "$ " + d.StringFixed(2)
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprint(m)
	}
	return monthNames[m]
}
