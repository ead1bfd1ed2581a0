package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/entity"
	"github.com/reisekosten/reisekosten/internal/metrics"
	"github.com/reisekosten/reisekosten/internal/parser"
	"github.com/reisekosten/reisekosten/internal/repository"
)

// Processor runs the parsing pipeline for one stored receipt and persists
// the outcome. The parse itself never fails; only loading or persisting the
// receipt row can return an error.
type Processor struct {
	receipts repository.ReceiptRepository
	parser   *parser.Service
	schema   map[string]any
	logger   *slog.Logger

	// Results below this confidence are routed to manual review instead of
	// being marked parsed.
	reviewThreshold float64
}

func NewProcessor(receipts repository.ReceiptRepository, svc *parser.Service, reviewThreshold float64, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		receipts:        receipts,
		parser:          svc,
		schema:          parser.BuildParsedReceiptJSONSchema(),
		logger:          logger,
		reviewThreshold: reviewThreshold,
	}
}

// Process parses the file attached to the receipt and writes the parsed
// columns back. Manually verified receipts are left alone.
func (p *Processor) Process(ctx context.Context, receiptID uuid.UUID) error {
	start := time.Now()

	rc, err := p.receipts.GetByID(ctx, receiptID)
	if err != nil {
		p.logger.Error("pipeline.load_failed", "receipt_id", receiptID, "error", err)
		return err
	}
	if rc.Verified {
		p.logger.Info("pipeline.skip_verified", "receipt_id", receiptID)
		return nil
	}
	if rc.FilePath == nil {
		return fmt.Errorf("receipt %s has no stored file", receiptID)
	}

	mimeType := ""
	if rc.MimeType != nil {
		mimeType = *rc.MimeType
	}
	result := p.parser.ParseReceiptFile(ctx, *rc.FilePath, mimeType)

	artifact, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal parse result: %w", err)
	}
	if err := parser.ValidateJSONAgainstSchema(p.schema, artifact); err != nil {
		p.logger.Error("pipeline.schema_violation", "receipt_id", receiptID, "error", err)
		return err
	}

	// Status mapping: the zero-confidence fallback is FAILED, low confidence
	// is MANUAL review, everything else PARSED.
	outcome := "parsed"
	status := constants.ParsingStatusParsed
	switch {
	case result.Failed():
		outcome = "failed"
		status = constants.ParsingStatusFailed
	case result.ParsingConfidence < p.reviewThreshold:
		outcome = "manual"
		status = constants.ParsingStatusManual
	}

	applyResult(rc, result, artifact, status)

	if err := p.receipts.ApplyParseResult(ctx, rc); err != nil {
		p.logger.Error("pipeline.persist_failed", "receipt_id", receiptID, "error", err)
		return err
	}

	metrics.ReceiptParses.WithLabelValues(outcome).Inc()
	metrics.ParsingConfidence.Observe(result.ParsingConfidence)
	metrics.ParsingDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("pipeline.ok",
		"receipt_id", receiptID,
		"outcome", outcome,
		"confidence", result.ParsingConfidence,
		"duration", time.Since(start))
	return nil
}

// applyResult copies a parse result onto the receipt row.
func applyResult(rc *entity.Receipt, result parser.ParsedReceipt, artifact []byte, status constants.ParsingStatus) {
	rc.Amount = result.Amount
	rc.VAT = result.VAT
	rc.VATRate = result.VATRate
	rc.Date = result.Date
	rc.Merchant = result.Merchant
	rc.MerchantAddress = result.MerchantAddress
	rc.MerchantTaxID = result.MerchantTaxID
	rc.Category = result.Category
	rc.InvoiceNumber = result.InvoiceNumber
	rc.PaymentMethod = result.PaymentMethod

	if result.Currency != "" {
		currency := result.Currency
		rc.Currency = &currency
	} else {
		rc.Currency = nil
	}

	confidence := decimal.NewFromFloat(result.ParsingConfidence)
	rc.ParsingConfidence = &confidence
	now := time.Now().UTC()
	rc.ParsedAt = &now
	text := result.RawText
	rc.OCRText = &text
	rc.ExtractedJSON = artifact
	rc.ParsingStatus = &status
}
