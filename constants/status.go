package constants

// TravelStatus is the canonical lifecycle state of a travel record.
type TravelStatus string

const (
	TravelStatusDraft     TravelStatus = "draft"     // editable by the employee
	TravelStatusSubmitted TravelStatus = "submitted" // waiting on controller decision
	TravelStatusApproved  TravelStatus = "approved"  // terminal
	TravelStatusRejected  TravelStatus = "rejected"  // terminal
)

// ValidTravelStatus reports whether s is one of the stored status strings.
func ValidTravelStatus(s string) bool {
	switch TravelStatus(s) {
	case TravelStatusDraft, TravelStatusSubmitted, TravelStatusApproved, TravelStatusRejected:
		return true
	}
	return false
}

// UserRole controls what a user may see and do.
type UserRole string

const (
	RoleEmployee   UserRole = "employee"
	RoleController UserRole = "controller"
	RoleAdmin      UserRole = "admin"
)

// ValidUserRole reports whether s is a known role.
func ValidUserRole(s string) bool {
	switch UserRole(s) {
	case RoleEmployee, RoleController, RoleAdmin:
		return true
	}
	return false
}

// ParsingStatus tracks the receipt parsing pipeline state on a receipt row.
type ParsingStatus string

const (
	ParsingStatusPending ParsingStatus = "PENDING" // uploaded, not parsed yet
	ParsingStatusParsed  ParsingStatus = "PARSED"  // pipeline produced fields
	ParsingStatusFailed  ParsingStatus = "FAILED"  // zero-confidence fallback result
	ParsingStatusManual  ParsingStatus = "MANUAL"  // low confidence, routed to manual review
)
