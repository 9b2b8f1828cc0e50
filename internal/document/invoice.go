// Package document turns a persisted order into the printable invoice and
// the companion share message. The invoice is built as an ordered list of
// typed layout blocks so the content contract stays independent of the
// rendering backend that lays out coordinates.
package document

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickparts/storefront/internal/domain/cart"
	"github.com/quickparts/storefront/internal/domain/order"
)

// Display truncation limits, carried over from the storefront UI.
const (
	maxNameLen    = 38
	maxCommentLen = 60
)

// Terms printed at the bottom of every invoice.
var termsLines = []string{
	"GST and Packaging & Forwarding charges will be added extra",
	"Prices are subject to change without prior notice",
	"Payment terms as per company policy",
}

// Block is one typed section of the invoice layout.
type Block interface {
	isBlock()
}

// TitleBlock is the company and document title header.
type TitleBlock struct {
	Company  string
	Subtitle string
}

// MetaBlock carries the order identifier and creation date.
type MetaBlock struct {
	OrderID string
	Date    time.Time
}

// CustomerBlock lists the customer contact lines. Email and company rows are
// present only when non-empty.
type CustomerBlock struct {
	Name    string
	Phone   string
	Email   string
	Company string
}

// TableHeadBlock opens the itemized listing.
type TableHeadBlock struct{}

// GroupBlock is a machine header followed by its rows.
type GroupBlock struct {
	MachineName string
}

// RowBlock is one itemized line: part, code, quantity, unit price and line
// total.
type RowBlock struct {
	Name      string
	Code      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// SpecBlock is the truncated specification note under its row.
type SpecBlock struct {
	Text string
}

// TotalsBlock carries the subtotal and the grand total. The two are always
// numerically identical: no fees are computed here, the disclaimer in the
// terms notes that tax and handling are added externally.
type TotalsBlock struct {
	Subtotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// TermsBlock lists the terms and conditions lines.
type TermsBlock struct {
	Lines []string
}

// FooterBlock closes the document.
type FooterBlock struct {
	Message string
	Company string
}

func (TitleBlock) isBlock()     {}
func (MetaBlock) isBlock()      {}
func (CustomerBlock) isBlock()  {}
func (TableHeadBlock) isBlock() {}
func (GroupBlock) isBlock()     {}
func (RowBlock) isBlock()       {}
func (SpecBlock) isBlock()      {}
func (TotalsBlock) isBlock()    {}
func (TermsBlock) isBlock()     {}
func (FooterBlock) isBlock()    {}

// Invoice is the complete layout description for one order document.
type Invoice struct {
	Blocks []Block
}

// BuildInvoice derives the invoice layout from an order. Items are grouped
// with the same grouping function that backs the cart and checkout views, so
// the document can never disagree with what the customer saw. The printed
// totals come straight from the order's persisted total.
func BuildInvoice(company string, o *order.Order) Invoice {
	blocks := []Block{
		TitleBlock{Company: company, Subtitle: "Spare Parts Order Invoice"},
		MetaBlock{OrderID: o.ID, Date: o.CreatedAt},
		CustomerBlock{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Email:   o.Customer.Email,
			Company: o.Customer.Company,
		},
		TableHeadBlock{},
	}

	for _, g := range o.Groups() {
		blocks = append(blocks, GroupBlock{MachineName: g.MachineName})
		for _, it := range g.Items {
			blocks = append(blocks, RowBlock{
				Name:      truncate(it.PartName, maxNameLen),
				Code:      it.PartCode,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				LineTotal: cart.LineTotal(it),
			})
			if it.Comment != "" {
				blocks = append(blocks, SpecBlock{Text: truncate(it.Comment, maxCommentLen)})
			}
		}
	}

	blocks = append(blocks,
		TotalsBlock{Subtotal: o.TotalAmount, GrandTotal: o.TotalAmount},
		TermsBlock{Lines: termsLines},
		FooterBlock{Message: "Thank you for your business!", Company: company},
	)

	return Invoice{Blocks: blocks}
}
