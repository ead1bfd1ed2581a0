package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reisekosten/reisekosten/internal/common"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	ListByTravel(ctx context.Context, travelID uuid.UUID) ([]*entity.Receipt, error)
	// Update persists manual field edits by the owner or controller.
	Update(ctx context.Context, receipt *entity.Receipt) error
	// ApplyParseResult writes the parsing pipeline output columns only.
	ApplyParseResult(ctx context.Context, receipt *entity.Receipt) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type receiptRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReceiptRepository(pool *pgxpool.Pool, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{pool: pool, logger: logger}
}

const receiptColumns = `id, travel_id, file_path, original_filename, file_size,
	mime_type, amount, currency, receipt_date, vat, vat_rate, merchant,
	merchant_address, merchant_tax_id, category, invoice_number,
	payment_method, notes, parsing_status, parsing_confidence, parsed_at,
	ocr_text, extracted_json, verified, created_at, updated_at`

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rc entity.Receipt
	err := row.Scan(&rc.ID, &rc.TravelID, &rc.FilePath, &rc.OriginalFilename,
		&rc.FileSize, &rc.MimeType, &rc.Amount, &rc.Currency, &rc.Date,
		&rc.VAT, &rc.VATRate, &rc.Merchant, &rc.MerchantAddress,
		&rc.MerchantTaxID, &rc.Category, &rc.InvoiceNumber, &rc.PaymentMethod,
		&rc.Notes, &rc.ParsingStatus, &rc.ParsingConfidence, &rc.ParsedAt,
		&rc.OCRText, &rc.ExtractedJSON, &rc.Verified, &rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "scan receipt")
	}
	return &rc, nil
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO receipts (travel_id, file_path, original_filename,
			file_size, mime_type, parsing_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		receipt.TravelID, receipt.FilePath, receipt.OriginalFilename,
		receipt.FileSize, receipt.MimeType, receipt.ParsingStatus)
	if err := row.Scan(&receipt.ID, &receipt.CreatedAt, &receipt.UpdatedAt); err != nil {
		r.logger.Error("failed to create receipt", "travel_id", receipt.TravelID, "error", err)
		return common.WrapError(err, "create receipt")
	}
	return nil
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
	return scanReceipt(row)
}

func (r *receiptRepository) ListByTravel(ctx context.Context, travelID uuid.UUID) ([]*entity.Receipt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE travel_id = $1 ORDER BY created_at`, travelID)
	if err != nil {
		r.logger.Error("failed to list receipts", "travel_id", travelID, "error", err)
		return nil, common.WrapError(err, "list receipts")
	}
	defer rows.Close()

	var receipts []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rc)
	}
	return receipts, rows.Err()
}

func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipts SET amount = $2, currency = $3, receipt_date = $4,
			vat = $5, vat_rate = $6, merchant = $7, merchant_address = $8,
			merchant_tax_id = $9, category = $10, invoice_number = $11,
			payment_method = $12, notes = $13, updated_at = now()
		WHERE id = $1`,
		receipt.ID, receipt.Amount, receipt.Currency, receipt.Date,
		receipt.VAT, receipt.VATRate, receipt.Merchant, receipt.MerchantAddress,
		receipt.MerchantTaxID, receipt.Category, receipt.InvoiceNumber,
		receipt.PaymentMethod, receipt.Notes)
	if err != nil {
		r.logger.Error("failed to update receipt", "receipt_id", receipt.ID, "error", err)
		return common.WrapError(err, "update receipt")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *receiptRepository) ApplyParseResult(ctx context.Context, receipt *entity.Receipt) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipts SET amount = $2, currency = $3, receipt_date = $4,
			vat = $5, vat_rate = $6, merchant = $7, merchant_address = $8,
			merchant_tax_id = $9, category = $10, invoice_number = $11,
			payment_method = $12, parsing_status = $13, parsing_confidence = $14,
			parsed_at = $15, ocr_text = $16, extracted_json = $17,
			updated_at = now()
		WHERE id = $1`,
		receipt.ID, receipt.Amount, receipt.Currency, receipt.Date,
		receipt.VAT, receipt.VATRate, receipt.Merchant, receipt.MerchantAddress,
		receipt.MerchantTaxID, receipt.Category, receipt.InvoiceNumber,
		receipt.PaymentMethod, receipt.ParsingStatus, receipt.ParsingConfidence,
		receipt.ParsedAt, receipt.OCRText, receipt.ExtractedJSON)
	if err != nil {
		r.logger.Error("failed to apply parse result", "receipt_id", receipt.ID, "error", err)
		return common.WrapError(err, "apply parse result")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *receiptRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE receipts SET verified = $2, updated_at = now() WHERE id = $1`, id, verified)
	if err != nil {
		r.logger.Error("failed to set receipt verified", "receipt_id", id, "error", err)
		return common.WrapError(err, "set receipt verified")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete receipt", "receipt_id", id, "error", err)
		return common.WrapError(err, "delete receipt")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
