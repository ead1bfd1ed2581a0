package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleParse(t *testing.T) {
	text := "REWE Markt GmbH\nSumme 23,45 EUR\n15.01.2024\nVielen Dank"
	result := SimpleParse(text)

	require.NotNil(t, result.Amount)
	assert.True(t, decimal.RequireFromString("23.45").Equal(*result.Amount))
	require.NotNil(t, result.Currency)
	assert.Equal(t, "EUR", *result.Currency)
	require.NotNil(t, result.Date)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *result.Date)
	require.NotNil(t, result.Merchant)
	assert.Equal(t, "REWE Markt GmbH", *result.Merchant)
}

func TestSimpleParseEuroSignNormalized(t *testing.T) {
	result := SimpleParse("Kiosk\n4,20 €")
	require.NotNil(t, result.Currency)
	assert.Equal(t, "EUR", *result.Currency)
}

func TestSimpleParseAmountNotInsideLongerNumber(t *testing.T) {
	// The card number must not be split into a fake amount; the real
	// amount further on wins.
	result := SimpleParse("Shop\nKarte 4929123411112222\nBetrag 9,99")
	require.NotNil(t, result.Amount)
	assert.True(t, decimal.RequireFromString("9.99").Equal(*result.Amount))
}

func TestSimpleParseDateSeparators(t *testing.T) {
	for _, text := range []string{"x 15.01.2024", "x 15/01/2024", "x 15-01-24"} {
		result := SimpleParse(text)
		require.NotNil(t, result.Date, text)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *result.Date, text)
	}
}

func TestSimpleParseNothingFound(t *testing.T) {
	result := SimpleParse("")
	assert.Nil(t, result.Amount)
	assert.Nil(t, result.Currency)
	assert.Nil(t, result.Date)
	assert.Nil(t, result.Merchant)
}
