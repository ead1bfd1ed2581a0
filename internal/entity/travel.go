package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/reisekosten/reisekosten/constants"
)

// Travel represents a business trip with its attached receipts.
type Travel struct {
	ID                 uuid.UUID              `json:"id"`
	EmployeeID         uuid.UUID              `json:"employee_id"`
	EmployeeName       string                 `json:"employee_name"`
	StartAt            time.Time              `json:"start_at"`
	EndAt              time.Time              `json:"end_at"`
	DestinationCity    string                 `json:"destination_city"`
	DestinationCountry string                 `json:"destination_country"`
	Purpose            string                 `json:"purpose"`
	CostCenter         *string                `json:"cost_center,omitempty"`
	Status             constants.TravelStatus `json:"status"`
	Receipts           []*Receipt             `json:"receipts,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// Editable reports whether the travel may still be modified by its owner.
func (t *Travel) Editable() bool {
	return t.Status == constants.TravelStatusDraft || t.Status == constants.TravelStatusRejected
}
