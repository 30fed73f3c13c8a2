package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		code    string
		want    Currency
		wantErr bool
	}{
		{"USD", "USD", false},
		{"eur", "EUR", false},
		{" jpy ", "JPY", false},
		{"XYZ", "", true},
		{"US", "", true},
		{"DOLLAR", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseCurrency(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrency_Round(t *testing.T) {
	assert.Equal(t, int32(2), Currency("USD").Scale())
	assert.Equal(t, int32(0), Currency("JPY").Scale())
	assert.True(t, Currency("USD").Round(decimal.RequireFromString("1.005")).Equal(decimal.RequireFromString("1.01")))
	assert.True(t, Currency("JPY").Round(decimal.RequireFromString("99.6")).Equal(decimal.NewFromInt(100)))
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("12.50").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, ParseAmount("").IsZero())
	assert.True(t, ParseAmount("abc").IsZero())
}
