package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardizeAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1234.56", "1234.56"},
		{"-42.50", "-42.50"},
		{"+8", "8"},
		{"1,234.56", "1234.56"},
		{"-1,234,567.89", "-1234567.89"},
		{"1.234,56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1,234", "1234"},
		{"CHF 1'234.56", "1234.56"},
		{"€ -12,30", "-12.30"},
		{"$1,000.00", "1000.00"},
		{"(12.00)", "-12.00"},
		{"12.00-", "-12.00"},
		{"  99  ", "99"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizeAmount(tt.input))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "plain", input: "42.5", expected: "42.5"},
		{name: "negative european", input: "-1.234,56", expected: "-1234.56"},
		{name: "currency code", input: "USD 10", expected: "10"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "text", input: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestIsNegative(t *testing.T) {
	assert.True(t, IsNegative(decimal.RequireFromString("-0.01")))
	assert.False(t, IsNegative(decimal.Zero))
	assert.False(t, IsNegative(decimal.RequireFromString("3")))
}
