package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SimpleResult is the output of the label-free quick scan. It recovers fewer
// fields than the full extractor and is used where a cheap first guess is
// enough (inbox ingest preview).
type SimpleResult struct {
	Amount   *decimal.Decimal
	Currency *string
	Date     *time.Time
	Merchant *string
}

// The amount pattern anchors on a non-digit (or start of text) instead of a
// lookbehind, which RE2 does not support; the capture groups are unchanged.
var (
	reSimpleAmount = regexp.MustCompile(`(?:^|[^0-9])([0-9]+[.,][0-9]{2})\s?(EUR|€|USD|CHF)?`)
	reSimpleDate   = regexp.MustCompile(`([0-9]{2}[./-][0-9]{2}[./-][0-9]{2,4})`)
)

var simpleDateLayouts = []string{"02.01.2006", "02.01.06"}

// SimpleParse scans text without label anchors: the first decimal-looking
// number becomes the amount (with an optional trailing currency token), the
// first date-looking token becomes the date, and the first line becomes the
// merchant. Unrecovered fields stay nil.
func SimpleParse(text string) SimpleResult {
	var result SimpleResult

	if m := reSimpleAmount.FindStringSubmatch(text); m != nil {
		result.Amount = parseGermanDecimal(m[1])
		if result.Amount != nil && m[2] != "" {
			currency := m[2]
			if currency == "€" {
				currency = "EUR"
			}
			result.Currency = &currency
		}
	}

	if m := reSimpleDate.FindStringSubmatch(text); m != nil {
		token := strings.NewReplacer("/", ".", "-", ".").Replace(m[1])
		for _, layout := range simpleDateLayouts {
			if t, err := time.Parse(layout, token); err == nil {
				result.Date = &t
				break
			}
		}
	}

	if lines := strings.Split(strings.TrimSpace(text), "\n"); len(lines) > 0 {
		merchant := strings.TrimSpace(lines[0])
		if merchant != "" {
			if len(merchant) > merchantMaxLen {
				merchant = merchant[:merchantMaxLen]
			}
			result.Merchant = &merchant
		}
	}

	return result
}
