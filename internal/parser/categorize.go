package parser

import (
	"strings"

	"github.com/reisekosten/reisekosten/constants"
)

// Categorize assigns exactly one expense category from the extracted fields
// and the raw text. Categories are tested in fixed priority order
// (lodging, transport, meals, entertainment); within a category the first
// keyword found in either the merchant name or the full text decides.
// No keyword hit at all yields CategoryOther.
func Categorize(fields Fields, rawText string) constants.ExpenseCategory {
	lower := strings.ToLower(rawText)
	merchant := ""
	if fields.Merchant != nil {
		merchant = strings.ToLower(*fields.Merchant)
	}

	for _, category := range constants.CategoryPriority {
		for _, keyword := range constants.CategoryKeywords[category] {
			if strings.Contains(merchant, keyword) || strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return constants.CategoryOther
}
