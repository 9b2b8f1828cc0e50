// Package cart implements the customer cart: line items keyed by part,
// quantity and comment mutations, durable per-token persistence, grouping
// for display and invoicing, and total calculation.
package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one purchasable line in a cart. Display fields and the unit price
// are snapshots taken when the part is added; later catalog edits do not
// affect items already in a cart.
type Item struct {
	PartID      string          `json:"part_id"`
	PartName    string          `json:"part_name"`
	PartCode    string          `json:"part_code"`
	MachineName string          `json:"machine_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Comment     string          `json:"comment"`
}

// Snapshot carries the catalog fields captured into a new Item at add time.
type Snapshot struct {
	PartID      string
	PartName    string
	PartCode    string
	MachineName string
	UnitPrice   decimal.Decimal
	ImageURL    string
}

// LineTotal returns unit price times quantity, rounded to the currency's
// minor unit.
func LineTotal(it Item) decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
}

// Total returns the sum of line totals over all items. The empty cart totals
// zero. Totals are always recomputed from the items, never cached, so the
// on-screen total and the invoice total cannot drift apart.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it))
	}
	return total.Round(2)
}

// Units returns the total number of units across all lines.
func Units(items []Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
