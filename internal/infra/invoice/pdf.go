package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"fusion/internal/domain/model"

	"github.com/go-pdf/fpdf"
)

const brand = "Fusion"

// 注文の請求書PDF
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// addrはnilでもよい（削除済み住所）
func (r *PDFRenderer) Render(o model.Order, addr *model.Address, email string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	//ヘッダー
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 10, brand, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")
	pdf.Ln(4)

	//注文情報
	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}
	line("Order #:", o.ID)
	line("Date:", o.CreatedAt.Format("2006-01-02"))
	line("Status:", string(o.OrderStatus))
	line("Payment:", string(o.PaymentStatus))
	line("Email:", email)
	pdf.Ln(4)

	//配送先
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Shipping Address", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range addressLines(addr) {
		pdf.CellFormat(0, 6, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	//明細
	widths := []float64{95, 20, 32, 33}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"ITEM", "QTY", "PRICE", "TOTAL"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range o.Items {
		name := it.Name
		if it.Size != "" {
			name = fmt.Sprintf("%s (%s)", it.Name, it.Size)
		}
		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(it.UnitPrice()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(it.LineTotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, money(o.TotalAmount), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// 標準フォントに₹が無いのでRs.表記
func money(v float64) string {
	return fmt.Sprintf("Rs.%.2f", v)
}

func addressLines(a *model.Address) []string {
	if a == nil {
		return []string{"N/A"}
	}
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	return []string{
		name,
		a.Address,
		fmt.Sprintf("%s, %s %s", a.City, a.State, a.ZipCode),
		a.Country,
		"Phone: " + a.Phone,
	}
}
