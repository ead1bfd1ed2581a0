package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/extract"
)

// ParsedReceipt is the complete result of a parsing run. Nil members mean the
// field was not recovered. Currency always defaults to EUR on a successful
// run; Category is always set on a successful run (CategoryOther when no
// keyword matched) and absent only on total failure.
//
// MerchantAddress and MerchantTaxID are carried for forward compatibility;
// no extractor populates them yet.
type ParsedReceipt struct {
	Amount            *decimal.Decimal           `json:"amount,omitempty"`
	Currency          string                     `json:"currency,omitempty"`
	VAT               *decimal.Decimal           `json:"vat,omitempty"`
	VATRate           *decimal.Decimal           `json:"vat_rate,omitempty"`
	Date              *time.Time                 `json:"date,omitempty"`
	Merchant          *string                    `json:"merchant,omitempty"`
	MerchantAddress   *string                    `json:"merchant_address,omitempty"`
	MerchantTaxID     *string                    `json:"merchant_tax_id,omitempty"`
	Category          *constants.ExpenseCategory `json:"category,omitempty"`
	InvoiceNumber     *string                    `json:"invoice_number,omitempty"`
	PaymentMethod     *string                    `json:"payment_method,omitempty"`
	ParsingConfidence float64                    `json:"parsing_confidence"`
	RawText           string                     `json:"raw_text"`
}

// Failed reports whether this result came from the zero-confidence fallback.
func (p ParsedReceipt) Failed() bool {
	return p.ParsingConfidence == 0 && len(p.RawText) >= len(failedPrefix) && p.RawText[:len(failedPrefix)] == failedPrefix
}

const failedPrefix = "Parsing failed: "

// Service orchestrates text acquisition, field extraction, categorization
// and confidence scoring into one ParsedReceipt.
type Service struct {
	extractor extract.TextExtractor
	logger    *slog.Logger
}

func NewService(extractor extract.TextExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractor: extractor, logger: logger}
}

// ParseReceiptFile runs the full pipeline for one stored file. It never
// returns an error: any failure, including a panic in a stage, degrades to a
// zero-confidence result whose raw text carries the failure message. Callers
// decide what to do with low confidence; this method only reports it.
func (s *Service) ParseReceiptFile(ctx context.Context, filePath, mimeType string) (result ParsedReceipt) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("parse.panic", "path", filePath, "panic", r)
			result = failedResult(fmt.Errorf("%v", r))
		}
	}()

	rawText, err := s.extractor.ExtractText(ctx, filePath, mimeType)
	if err != nil {
		s.logger.Warn("parse.acquisition_failed", "path", filePath, "error", err)
		return failedResult(err)
	}

	// Empty text is not a failure: the stages still run and the scorer
	// reports near-zero confidence on its own.
	fields := ExtractFields(rawText)
	category := Categorize(fields, rawText)
	confidence := Confidence(fields, rawText)

	result = ParsedReceipt{
		Amount:            fields.Amount,
		Currency:          fields.Currency,
		VAT:               fields.VAT,
		VATRate:           fields.VATRate,
		Date:              fields.Date,
		Merchant:          fields.Merchant,
		Category:          &category,
		InvoiceNumber:     fields.InvoiceNumber,
		PaymentMethod:     fields.PaymentMethod,
		ParsingConfidence: confidence,
		RawText:           rawText,
	}

	s.logger.Info("parse.ok",
		"path", filePath,
		"confidence", confidence,
		"category", category,
		"text_len", len(rawText),
		"duration", time.Since(start))
	return result
}

// failedResult is the total-failure fallback: confidence 0, all fields unset,
// raw text replaced by the failure message.
func failedResult(err error) ParsedReceipt {
	return ParsedReceipt{
		ParsingConfidence: 0,
		RawText:           failedPrefix + err.Error(),
	}
}
