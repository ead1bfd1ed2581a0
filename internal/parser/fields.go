package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reisekosten/reisekosten/constants"
)

// Fields is the partial result of extraction. A nil member means the field
// was not found; downstream consumers must not treat nil as zero. Currency is
// a constant default and never counts as an extraction hit.
type Fields struct {
	Amount        *decimal.Decimal
	Currency      string
	VAT           *decimal.Decimal
	VATRate       *decimal.Decimal
	Date          *time.Time
	Merchant      *string
	InvoiceNumber *string
	PaymentMethod *string
}

// Empty reports whether extraction found nothing at all. The EUR default
// does not count; an all-defaults map scores the zero base.
func (f Fields) Empty() bool {
	return f.Amount == nil &&
		f.VAT == nil &&
		f.VATRate == nil &&
		f.Date == nil &&
		f.Merchant == nil &&
		f.InvoiceNumber == nil &&
		f.PaymentMethod == nil
}

const merchantMaxLen = 255

// Patterns assume German invoice conventions and run against lower-cased
// text. The comma is always a decimal point in matched numeric tokens, never
// a thousands separator.
var (
	reAmount  = regexp.MustCompile(`(?:gesamt|total|summe)[:\s]*([0-9,]+[.,][0-9]{2})`)
	reVAT     = regexp.MustCompile(`mwst[.\s]*([0-9]+)%[:\s]*([0-9,]+[.,][0-9]{2})`)
	reDate    = regexp.MustCompile(`datum[:\s]*([0-9]{1,2}[./][0-9]{1,2}[./][0-9]{2,4})`)
	reInvoice = regexp.MustCompile(`(?:rechnung|invoice|nr)[.:\s#]*([a-z0-9-]*[0-9][a-z0-9-]*)`)
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{"2.1.2006", "2/1/2006", "2.1.06"}

// ExtractFields pattern-matches raw receipt text into a partial field set.
// Every field is extracted independently; a malformed value skips that field
// only and never aborts the others.
func ExtractFields(text string) Fields {
	lower := strings.ToLower(text)

	fields := Fields{Currency: "EUR"}
	fields.Amount = extractAmount(lower)
	fields.VATRate, fields.VAT = extractVAT(lower)
	fields.Date = extractDate(lower)
	fields.Merchant = extractMerchant(text)
	fields.InvoiceNumber = extractInvoiceNumber(lower)
	fields.PaymentMethod = extractPaymentMethod(lower)
	return fields
}

// extractAmount finds a total-like label (gesamt/total/summe) followed by a
// decimal number. First match wins; no subtotal vs. grand total
// disambiguation beyond the label anchor.
func extractAmount(lower string) *decimal.Decimal {
	m := reAmount.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	return parseGermanDecimal(m[1])
}

// extractVAT populates rate and amount together, or neither. A receipt
// showing only one of the two leaves both unset.
func extractVAT(lower string) (rate, amount *decimal.Decimal) {
	m := reVAT.FindStringSubmatch(lower)
	if m == nil {
		return nil, nil
	}
	r, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil, nil
	}
	a := parseGermanDecimal(m[2])
	if a == nil {
		return nil, nil
	}
	return &r, a
}

func extractDate(lower string) *time.Time {
	m := reDate.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, m[1]); err == nil {
			return &t
		}
	}
	return nil
}

// extractMerchant takes the first non-blank line of the text verbatim,
// trimmed and truncated to the storage column width.
func extractMerchant(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > merchantMaxLen {
			line = line[:merchantMaxLen]
		}
		return &line
	}
	return nil
}

// extractInvoiceNumber captures the alphanumeric token after a
// rechnung/invoice/nr label. The token must carry at least one digit so that
// a following label word ("Rechnung Nr: ...") is skipped over rather than
// captured.
func extractInvoiceNumber(lower string) *string {
	m := reInvoice.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	return &m[1]
}

// extractPaymentMethod scans for the first literal match in the fixed method
// list. List order decides the winner, not position in the text; hyphens are
// normalized to underscores in the stored token.
func extractPaymentMethod(lower string) *string {
	for _, method := range constants.PaymentMethods {
		if strings.Contains(lower, method) {
			token := strings.ReplaceAll(method, "-", "_")
			return &token
		}
	}
	return nil
}

// parseGermanDecimal normalizes the decimal separator to '.' and converts.
// Returns nil on malformed input (e.g. a token with multiple separators).
func parseGermanDecimal(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return nil
	}
	return &d
}
