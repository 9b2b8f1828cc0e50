package document

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// RenderingError wraps a failure inside the PDF backend. By the time
// rendering runs the order is already persisted and the cart cleared, so
// callers surface this as a recoverable notification rather than failing the
// submission flow.
type RenderingError struct {
	Err error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("document rendering failed: %v", e.Err)
}

func (e *RenderingError) Unwrap() error {
	return e.Err
}

// Page geometry in millimetres (A4 portrait).
const (
	marginLeft  = 15.0
	marginRight = 15.0
	pageWidth   = 210.0
	contentW    = pageWidth - marginLeft - marginRight

	colCode   = 95.0
	colQty    = 125.0
	colRate   = 140.0
	colAmount = 168.0
)

// RenderPDF lays out the invoice blocks onto A4 pages and returns the PDF
// bytes. Any panic out of the PDF backend is converted to a RenderingError.
func RenderPDF(inv Invoice) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderingError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, 20, marginRight)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	for _, b := range inv.Blocks {
		switch blk := b.(type) {
		case TitleBlock:
			pdf.SetFont("Helvetica", "B", 22)
			pdf.CellFormat(contentW, 10, blk.Company, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 12)
			pdf.CellFormat(contentW, 8, blk.Subtitle, "", 1, "L", false, 0, "")
			pdf.Ln(2)

		case MetaBlock:
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(contentW, 5, "Order ID: "+blk.OrderID, "", 1, "R", false, 0, "")
			pdf.CellFormat(contentW, 5, "Date: "+blk.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
			pdf.Ln(3)

		case CustomerBlock:
			top := pdf.GetY()
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(contentW, 7, "Customer Information", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(contentW, 5, "Name: "+blk.Name, "", 1, "L", false, 0, "")
			pdf.CellFormat(contentW, 5, "Phone: "+blk.Phone, "", 1, "L", false, 0, "")
			if blk.Email != "" {
				pdf.CellFormat(contentW, 5, "Email: "+blk.Email, "", 1, "L", false, 0, "")
			}
			if blk.Company != "" {
				pdf.CellFormat(contentW, 5, "Company: "+blk.Company, "", 1, "L", false, 0, "")
			}
			pdf.Rect(marginLeft-2, top-2, contentW+4, pdf.GetY()-top+4, "D")
			pdf.Ln(5)

		case TableHeadBlock:
			pdf.SetFillColor(59, 130, 246)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(colCode-marginLeft, 7, "Item Details", "", 0, "L", true, 0, "")
			pdf.CellFormat(colQty-colCode, 7, "Code", "", 0, "L", true, 0, "")
			pdf.CellFormat(colRate-colQty, 7, "Qty", "", 0, "R", true, 0, "")
			pdf.CellFormat(colAmount-colRate, 7, "Rate (Rs.)", "", 0, "R", true, 0, "")
			pdf.CellFormat(pageWidth-marginRight-colAmount, 7, "Amount (Rs.)", "", 1, "R", true, 0, "")
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(1)

		case GroupBlock:
			pdf.SetFillColor(240, 240, 240)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(contentW, 6, blk.MachineName, "", 1, "L", true, 0, "")
			pdf.Ln(1)

		case RowBlock:
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(colCode-marginLeft, 5, blk.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(colQty-colCode, 5, blk.Code, "", 0, "L", false, 0, "")
			pdf.CellFormat(colRate-colQty, 5, strconv.Itoa(blk.Quantity), "", 0, "R", false, 0, "")
			pdf.CellFormat(colAmount-colRate, 5, FormatAmount(blk.UnitPrice), "", 0, "R", false, 0, "")
			pdf.CellFormat(pageWidth-marginRight-colAmount, 5, FormatAmount(blk.LineTotal), "", 1, "R", false, 0, "")

		case SpecBlock:
			pdf.SetFont("Helvetica", "I", 7)
			pdf.CellFormat(contentW, 4, "Spec: "+blk.Text, "", 1, "L", false, 0, "")

		case TotalsBlock:
			pdf.Ln(4)
			pdf.Line(colQty, pdf.GetY(), pageWidth-marginRight, pdf.GetY())
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(colAmount-marginLeft, 6, "Subtotal:", "", 0, "R", false, 0, "")
			pdf.CellFormat(pageWidth-marginRight-colAmount, 6, "Rs. "+FormatAmount(blk.Subtotal), "", 1, "R", false, 0, "")
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(colAmount-marginLeft, 6, "Total Amount:", "", 0, "R", false, 0, "")
			pdf.CellFormat(pageWidth-marginRight-colAmount, 6, "Rs. "+FormatAmount(blk.GrandTotal), "", 1, "R", false, 0, "")

		case TermsBlock:
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "B", 8)
			pdf.CellFormat(contentW, 4, "Terms & Conditions:", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 8)
			for _, line := range blk.Lines {
				pdf.CellFormat(contentW, 4, "- "+line, "", 1, "L", false, 0, "")
			}

		case FooterBlock:
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(contentW/2, 5, blk.Message, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW/2, 5, blk.Company, "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderingError{Err: err}
	}
	return buf.Bytes(), nil
}
