package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reisekosten/reisekosten/constants"
)

// Receipt represents a stored expense receipt row. The parsed_* and ocr_text
// columns hold whatever the parsing pipeline recovered; nil means "not found",
// never "found as zero".
type Receipt struct {
	ID       uuid.UUID `json:"id"`
	TravelID uuid.UUID `json:"travel_id"`

	FilePath         *string `json:"file_path,omitempty"`
	OriginalFilename *string `json:"original_filename,omitempty"`
	FileSize         *int64  `json:"file_size,omitempty"`
	MimeType         *string `json:"mime_type,omitempty"`

	Amount          *decimal.Decimal           `json:"amount,omitempty"`
	Currency        *string                    `json:"currency,omitempty"`
	Date            *time.Time                 `json:"date,omitempty"`
	VAT             *decimal.Decimal           `json:"vat,omitempty"`
	VATRate         *decimal.Decimal           `json:"vat_rate,omitempty"`
	Merchant        *string                    `json:"merchant,omitempty"`
	MerchantAddress *string                    `json:"merchant_address,omitempty"`
	MerchantTaxID   *string                    `json:"merchant_tax_id,omitempty"`
	Category        *constants.ExpenseCategory `json:"category,omitempty"`
	InvoiceNumber   *string                    `json:"invoice_number,omitempty"`
	PaymentMethod   *string                    `json:"payment_method,omitempty"`
	Notes           *string                    `json:"notes,omitempty"`

	ParsingStatus     *constants.ParsingStatus `json:"parsing_status,omitempty"`
	ParsingConfidence *decimal.Decimal         `json:"parsing_confidence,omitempty"`
	ParsedAt          *time.Time               `json:"parsed_at,omitempty"`
	OCRText           *string                  `json:"ocr_text,omitempty"`
	ExtractedJSON     []byte                   `json:"-"`

	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
