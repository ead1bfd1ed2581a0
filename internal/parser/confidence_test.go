package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestConfidenceEmptyFieldsScoreZero(t *testing.T) {
	// No extraction hits means zero, even when the text itself is long and
	// full of price-like tokens.
	long := strings.Repeat("plausible looking text 12,34 ", 20)
	assert.Equal(t, 0.0, Confidence(Fields{Currency: "EUR"}, long))
	assert.Equal(t, 0.0, Confidence(Fields{}, ""))
}

func TestConfidencePointScheme(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	shortText := "no price here"

	tests := []struct {
		name   string
		fields Fields
		text   string
		want   float64
	}{
		{"merchant only", Fields{Merchant: strPtr("Hotel")}, shortText, 50},
		{"amount only", Fields{Amount: decPtr("9.99")}, shortText, 55},
		{"amount and merchant", Fields{Amount: decPtr("9.99"), Merchant: strPtr("Hotel")}, shortText, 75},
		{"amount merchant date", Fields{Amount: decPtr("9.99"), Merchant: strPtr("Hotel"), Date: &date}, shortText, 90},
		{"payment method only", Fields{PaymentMethod: strPtr("paypal")}, shortText, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.fields, tt.text))
		})
	}
}

func TestConfidenceTextBonuses(t *testing.T) {
	fields := Fields{Merchant: strPtr("Hotel")}

	// Price-like token adds 5.
	assert.Equal(t, 55.0, Confidence(fields, "Zimmer 87,50"))

	// Long text adds another 5.
	long := "Zimmer 87,50 " + strings.Repeat("x", 100)
	assert.Equal(t, 60.0, Confidence(fields, long))
}

func TestConfidenceClampedAt100(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	fields := Fields{
		Amount:   decPtr("101.51"),
		VAT:      decPtr("14.01"),
		VATRate:  decPtr("19"),
		Date:     &date,
		Merchant: strPtr("Hotel Berlin"),
	}
	long := "Gesamt: 101,51 " + strings.Repeat("x", 100)
	assert.Equal(t, 100.0, Confidence(fields, long))
}

func TestConfidenceRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fields := Fields{Currency: "EUR"}
		if rapid.Bool().Draw(t, "hasAmount") {
			fields.Amount = decPtr("1.00")
		}
		if rapid.Bool().Draw(t, "hasMerchant") {
			fields.Merchant = strPtr(rapid.StringN(1, 40, 40).Draw(t, "merchant"))
		}
		if rapid.Bool().Draw(t, "hasDate") {
			d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			fields.Date = &d
		}
		if rapid.Bool().Draw(t, "hasVAT") {
			fields.VAT = decPtr("0.50")
		}
		text := rapid.StringN(0, 300, 300).Draw(t, "text")

		score := Confidence(fields, text)
		if score < 0 || score > 100 {
			t.Fatalf("score out of range: %v", score)
		}
		if fields.Empty() && score != 0 {
			t.Fatalf("empty fields must score 0, got %v", score)
		}
		if !fields.Empty() && score < 30 {
			t.Fatalf("non-empty fields must score at least the base, got %v", score)
		}
	})
}
