package constants

import "strings"

// ExpenseCategory is the closed set of expense categories on a receipt.
type ExpenseCategory string

const (
	CategoryLodging       ExpenseCategory = "lodging"
	CategoryTransport     ExpenseCategory = "transport"
	CategoryMeals         ExpenseCategory = "meals"
	CategoryEntertainment ExpenseCategory = "entertainment"
	CategoryOther         ExpenseCategory = "other"
)

var allCategories = []ExpenseCategory{
	CategoryLodging,
	CategoryTransport,
	CategoryMeals,
	CategoryEntertainment,
	CategoryOther,
}

// CategoryKeywords maps a category to the literal tokens that imply it.
// Matching is case-insensitive against merchant name and full receipt text.
// "ticket" appears under both transport and entertainment on purpose; the
// priority order below makes transport win that overlap.
var CategoryKeywords = map[ExpenseCategory][]string{
	CategoryLodging:       {"hotel", "hostel", "pension", "übernachtung", "uebernachtung", "accommodation", "zimmer"},
	CategoryTransport:     {"bahn", "flug", "airline", "taxi", "uber", "bus", "ticket", "fahrkarte"},
	CategoryMeals:         {"restaurant", "café", "cafe", "bar", "pizza", "mcdonalds", "burger", "bistro", "essen"},
	CategoryEntertainment: {"kino", "theater", "museum", "ticket", "event", "konzert"},
}

// CategoryPriority is the order categories are tested in; the first whose
// keyword set matches wins. Anything unmatched falls back to CategoryOther.
var CategoryPriority = []ExpenseCategory{
	CategoryLodging,
	CategoryTransport,
	CategoryMeals,
	CategoryEntertainment,
}

// Categories returns all category values as strings.
func Categories() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// ParseCategory canonicalizes input to a category value.
// Unknown or empty input maps to CategoryOther with ok=false.
func ParseCategory(input string) (ExpenseCategory, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	return CategoryOther, false
}

// PaymentMethods is the ordered list of payment method tokens the extractor
// scans for. List order decides which one wins, not position in the text.
// The stored value replaces hyphens with underscores.
var PaymentMethods = []string{
	"ec-karte",
	"kreditkarte",
	"bargeld",
	"überweisung",
	"paypal",
}
