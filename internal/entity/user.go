package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/reisekosten/reisekosten/constants"
)

// User represents an account for data transfer between layers.
// Employees optionally carry the controller responsible for their travels.
type User struct {
	ID           uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Role         constants.UserRole `json:"role"`
	Company      string             `json:"company"`
	Department   *string            `json:"department,omitempty"`
	CostCenter   *string            `json:"cost_center,omitempty"`
	IsActive     bool               `json:"is_active"`
	ControllerID *uuid.UUID         `json:"controller_id,omitempty"`
	PasswordHash string             `json:"-"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
