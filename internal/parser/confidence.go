package parser

import "regexp"

// pricePattern is a weak plausibility signal: any decimal-looking number in
// the text, regardless of label.
var pricePattern = regexp.MustCompile(`[0-9,]+[.,][0-9]{2}`)

// Confidence scores a parse result on a 0-100 scale using a fixed additive
// point scheme:
//
//	base 30 when extraction found at least one field,
//	+25 amount, +20 merchant, +15 date, +10 vat,
//	+5 raw text longer than 100 chars, +5 any price-like token in the text.
//
// An extraction that found nothing scores 0 regardless of text length. The
// sum is clamped at 100.
func Confidence(fields Fields, rawText string) float64 {
	if fields.Empty() {
		return 0
	}
	score := 30.0
	if fields.Amount != nil {
		score += 25
	}
	if fields.Merchant != nil {
		score += 20
	}
	if fields.Date != nil {
		score += 15
	}
	if fields.VAT != nil {
		score += 10
	}
	if len(rawText) > 100 {
		score += 5
	}
	if pricePattern.MatchString(rawText) {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}
