package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reisekosten/reisekosten/constants"
)

func strPtr(s string) *string { return &s }

func TestCategorizeByMerchant(t *testing.T) {
	tests := []struct {
		name     string
		merchant string
		text     string
		want     constants.ExpenseCategory
	}{
		{"hotel", "Hotel Berlin", "", constants.CategoryLodging},
		{"bahn", "Deutsche Bahn AG", "", constants.CategoryTransport},
		{"restaurant", "Ristorante Roma", "restaurant roma danke", constants.CategoryMeals},
		{"kino", "CineStar", "Kino Vorstellung 20:15", constants.CategoryEntertainment},
		{"no keyword", "Schmidt GmbH", "Schmidt GmbH\nBüromaterial", constants.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Fields{Merchant: strPtr(tt.merchant)}
			assert.Equal(t, tt.want, Categorize(fields, tt.text))
		})
	}
}

func TestCategorizeKeywordInTextOnly(t *testing.T) {
	// The merchant carries no keyword but the body mentions a taxi ride.
	fields := Fields{Merchant: strPtr("Müller & Söhne")}
	got := Categorize(fields, "Müller & Söhne\nTaxi Fahrt Flughafen\n24,50")
	assert.Equal(t, constants.CategoryTransport, got)
}

func TestCategorizeTicketPrefersTransport(t *testing.T) {
	// "ticket" is a keyword for both transport and entertainment; the
	// priority order resolves it to transport even for a concert ticket
	// vendor with no other transport signal.
	fields := Fields{Merchant: strPtr("Eventim Ticket Shop")}
	got := Categorize(fields, "Eventim Ticket Shop\nKonzertkarte")
	assert.Equal(t, constants.CategoryTransport, got)
}

func TestCategorizePriorityLodgingFirst(t *testing.T) {
	// A hotel receipt mentioning breakfast must stay lodging.
	fields := Fields{Merchant: strPtr("Hotel am See")}
	got := Categorize(fields, "Hotel am See\nRestaurant Frühstück inkl.")
	assert.Equal(t, constants.CategoryLodging, got)
}

func TestCategorizeNilMerchant(t *testing.T) {
	got := Categorize(Fields{}, "Fahrkarte Einzelticket 3,20")
	assert.Equal(t, constants.CategoryTransport, got)

	assert.Equal(t, constants.CategoryOther, Categorize(Fields{}, ""))
}
