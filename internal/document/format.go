package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a rupee amount with Indian digit grouping
// (12,34,567). Whole amounts omit the paise; fractional amounts always show
// two digits. The cart total shown on screen and the totals printed on the
// invoice both go through this one formatter.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	neg := d.IsNegative()
	abs := d.Abs()

	intPart := abs.Truncate(0)
	frac := abs.Sub(intPart)

	s := groupIndian(intPart.String())
	if !frac.IsZero() {
		// StringFixed on the full value keeps the exact paise digits.
		fixed := abs.StringFixed(2)
		s += fixed[strings.LastIndexByte(fixed, '.'):]
	}
	if neg {
		s = "-" + s
	}
	return s
}

// groupIndian inserts commas in the Indian system: the last three digits
// form one group, every group before it has two digits.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	head := digits[:n-3]
	for len(head) > 2 {
		cut := len(head) % 2
		if cut == 0 {
			cut = 2
		}
		b.WriteString(head[:cut])
		b.WriteByte(',')
		head = head[cut:]
	}
	b.WriteString(head)
	b.WriteByte(',')
	b.WriteString(digits[n-3:])
	return b.String()
}

// truncate shortens s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
