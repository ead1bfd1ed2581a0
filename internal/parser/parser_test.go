package parser

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisekosten/reisekosten/constants"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(_ context.Context, _, _ string) (string, error) {
	return s.text, s.err
}

type panicExtractor struct{}

func (panicExtractor) ExtractText(_ context.Context, _, _ string) (string, error) {
	panic("tesseract binary vanished")
}

func TestParseReceiptFileHotelReceipt(t *testing.T) {
	svc := NewService(&stubExtractor{text: hotelReceipt}, nil)

	result := svc.ParseReceiptFile(context.Background(), "/tmp/hotel.pdf", "application/pdf")

	require.NotNil(t, result.Amount)
	assert.True(t, decimal.RequireFromString("101.51").Equal(*result.Amount))
	require.NotNil(t, result.VAT)
	assert.True(t, decimal.RequireFromString("14.01").Equal(*result.VAT))
	require.NotNil(t, result.VATRate)
	assert.True(t, decimal.RequireFromString("19").Equal(*result.VATRate))
	require.NotNil(t, result.Merchant)
	assert.Equal(t, "HOTEL BERLIN", *result.Merchant)
	require.NotNil(t, result.InvoiceNumber)
	assert.Contains(t, *result.InvoiceNumber, "2024-001234")
	require.NotNil(t, result.Category)
	assert.Equal(t, constants.CategoryLodging, *result.Category)
	assert.Equal(t, "EUR", result.Currency)
	assert.GreaterOrEqual(t, result.ParsingConfidence, 80.0)
	assert.Equal(t, hotelReceipt, result.RawText)
	assert.False(t, result.Failed())
}

func TestParseReceiptFileEmptyText(t *testing.T) {
	// Unreadable but well-formed input yields a normal low-confidence
	// result, not the failure fallback.
	svc := NewService(&stubExtractor{text: ""}, nil)

	result := svc.ParseReceiptFile(context.Background(), "/tmp/blank.png", "image/png")

	assert.Equal(t, 0.0, result.ParsingConfidence)
	assert.Equal(t, "", result.RawText)
	require.NotNil(t, result.Category)
	assert.Equal(t, constants.CategoryOther, *result.Category)
	assert.Equal(t, "EUR", result.Currency)
	assert.Nil(t, result.Amount)
	assert.False(t, result.Failed())
}

func TestParseReceiptFileAcquisitionError(t *testing.T) {
	svc := NewService(&stubExtractor{err: errors.New("pdftotext: exit status 1")}, nil)

	result := svc.ParseReceiptFile(context.Background(), "/tmp/broken.pdf", "application/pdf")

	assert.Equal(t, 0.0, result.ParsingConfidence)
	assert.Equal(t, "Parsing failed: pdftotext: exit status 1", result.RawText)
	assert.Nil(t, result.Amount)
	assert.Nil(t, result.Merchant)
	assert.Nil(t, result.Category)
	assert.True(t, result.Failed())
}

func TestParseReceiptFileContainsPanic(t *testing.T) {
	svc := NewService(panicExtractor{}, nil)

	result := svc.ParseReceiptFile(context.Background(), "/tmp/x.pdf", "application/pdf")

	assert.Equal(t, 0.0, result.ParsingConfidence)
	assert.Equal(t, "Parsing failed: tesseract binary vanished", result.RawText)
	assert.True(t, result.Failed())
}

func TestParsedReceiptMatchesSchema(t *testing.T) {
	schema := BuildParsedReceiptJSONSchema()

	svc := NewService(&stubExtractor{text: hotelReceipt}, nil)
	result := svc.ParseReceiptFile(context.Background(), "/tmp/hotel.pdf", "application/pdf")

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, data))

	// The failure fallback must validate too.
	failed := failedResult(errors.New("boom"))
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, data))
}

func TestValidateJSONAgainstSchemaRejectsBadConfidence(t *testing.T) {
	schema := BuildParsedReceiptJSONSchema()
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"parsing_confidence": 150, "raw_text": ""}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"parsing_confidence": 50, "raw_text": "", "category": "groceries"}`)))
}
