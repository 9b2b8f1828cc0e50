package document

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/quickparts/storefront/internal/domain/order"
)

// ShareMessage builds the plain-text order summary shared over messaging
// links. It reads the same persisted order the invoice renders from, never a
// recomputed cart.
func ShareMessage(company string, o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order Summary from %s\n\n", company)
	fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "Total: ₹%s\n\n", FormatAmount(o.TotalAmount))
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s (%dx)\n", it.PartName, it.Quantity)
	}
	b.WriteString("\n*GST and P&F charges will be added extra")
	return b.String()
}

// ShareURL returns the wa.me link carrying the share message.
func ShareURL(message string) string {
	return "https://wa.me/?text=" + url.QueryEscape(message)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName derives the download name for an order's invoice, e.g.
// "QuickParts-Order-1a2b3c4d-Ravi-Kumar.pdf".
func FileName(company string, o *order.Order) string {
	prefix := "Order"
	if fields := strings.Fields(company); len(fields) > 0 {
		prefix = unsafeFileChars.ReplaceAllString(fields[0], "")
	}
	id := o.ID
	if len(id) > 8 {
		id = id[:8]
	}
	customer := unsafeFileChars.ReplaceAllString(strings.TrimSpace(o.Customer.Name), "-")
	return fmt.Sprintf("%s-Order-%s-%s.pdf", prefix, id, customer)
}
