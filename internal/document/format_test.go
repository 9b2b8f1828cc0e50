package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "0"},
		{in: "7", want: "7"},
		{in: "999", want: "999"},
		{in: "1000", want: "1,000"},
		{in: "12345", want: "12,345"},
		{in: "123456", want: "1,23,456"},
		{in: "1234567", want: "12,34,567"},
		{in: "12345678", want: "1,23,45,678"},
		{in: "123456789", want: "12,34,56,789"},
		{in: "2500", want: "2,500"},
		{in: "120.50", want: "120.50"},
		{in: "1362.49", want: "1,362.49"},
		{in: "100000.05", want: "1,00,000.05"},
		{in: "100.00", want: "100"},
		{in: "0.99", want: "0.99"},
		{in: "-123456.70", want: "-1,23,456.70"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "0123456789...", truncate("0123456789longer", 10))
}
