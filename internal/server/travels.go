package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type travelRequest struct {
	StartAt            time.Time `json:"start_at"`
	EndAt              time.Time `json:"end_at"`
	DestinationCity    string    `json:"destination_city"`
	DestinationCountry string    `json:"destination_country"`
	Purpose            string    `json:"purpose"`
	CostCenter         *string   `json:"cost_center"`
}

func (r travelRequest) validate() error {
	if r.DestinationCity == "" || r.DestinationCountry == "" {
		return fmt.Errorf("destination city and country are required")
	}
	if r.StartAt.IsZero() || r.EndAt.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if r.EndAt.Before(r.StartAt) {
		return fmt.Errorf("end date is before start date")
	}
	return nil
}

// loadTravelForView resolves a travel the caller may read: the owner, the
// owner's controller (non-draft only), or an admin.
func (s *Server) loadTravelForView(c *fiber.Ctx) (*entity.Travel, error) {
	travelID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, errBadID
	}
	return s.viewTravel(c, travelID)
}

// viewTravel loads a travel and checks read access for the caller.
func (s *Server) viewTravel(c *fiber.Ctx, travelID uuid.UUID) (*entity.Travel, error) {
	travel, err := s.travels.GetByID(c.Context(), travelID)
	if err != nil {
		return nil, err
	}

	userID, role := currentUserID(c), currentRole(c)
	switch {
	case role == constants.RoleAdmin:
		return travel, nil
	case travel.EmployeeID == userID:
		return travel, nil
	case role == constants.RoleController:
		employee, err := s.users.GetByID(c.Context(), travel.EmployeeID)
		if err != nil {
			return nil, err
		}
		if employee.ControllerID != nil && *employee.ControllerID == userID &&
			travel.Status != constants.TravelStatusDraft {
			return travel, nil
		}
	}
	return nil, errForbidden
}

var (
	errBadID     = fmt.Errorf("invalid id")
	errForbidden = fmt.Errorf("forbidden")
)

func travelError(c *fiber.Ctx, err error) error {
	switch err {
	case errBadID:
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	case errForbidden:
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	default:
		return respondError(c, err)
	}
}

func (s *Server) handleCreateTravel(c *fiber.Ctx) error {
	var req travelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	travel := &entity.Travel{
		EmployeeID:         currentUserID(c),
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		DestinationCity:    req.DestinationCity,
		DestinationCountry: req.DestinationCountry,
		Purpose:            req.Purpose,
		CostCenter:         req.CostCenter,
		Status:             constants.TravelStatusDraft,
	}
	if err := s.travels.Create(c.Context(), travel); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(travel)
}

func (s *Server) handleListTravels(c *fiber.Ctx) error {
	var (
		travels []*entity.Travel
		err     error
	)
	switch currentRole(c) {
	case constants.RoleAdmin:
		travels, err = s.travels.ListAll(c.Context())
	case constants.RoleController:
		travels, err = s.travels.ListForController(c.Context(), currentUserID(c))
	default:
		travels, err = s.travels.ListByEmployee(c.Context(), currentUserID(c))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(travels)
}

func (s *Server) handleGetTravel(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	receipts, err := s.receipts.ListByTravel(c.Context(), travel.ID)
	if err != nil {
		return respondError(c, err)
	}
	travel.Receipts = receipts
	return c.JSON(travel)
}

func (s *Server) handleUpdateTravel(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if travel.EmployeeID != currentUserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the owner may edit a travel"})
	}
	if !travel.Editable() {
		return c.Status(409).JSON(fiber.Map{"error": fmt.Sprintf("travel is %s and cannot be edited", travel.Status)})
	}

	var req travelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	travel.StartAt = req.StartAt
	travel.EndAt = req.EndAt
	travel.DestinationCity = req.DestinationCity
	travel.DestinationCountry = req.DestinationCountry
	travel.Purpose = req.Purpose
	travel.CostCenter = req.CostCenter
	if err := s.travels.Update(c.Context(), travel); err != nil {
		return respondError(c, err)
	}
	return c.JSON(travel)
}

func (s *Server) handleDeleteTravel(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if travel.EmployeeID != currentUserID(c) && currentRole(c) != constants.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	}
	if travel.Status != constants.TravelStatusDraft {
		return c.Status(409).JSON(fiber.Map{"error": "only draft travels can be deleted"})
	}
	if err := s.travels.Delete(c.Context(), travel.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(204)
}

func (s *Server) handleSubmitTravel(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if travel.EmployeeID != currentUserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the owner may submit a travel"})
	}
	if !travel.Editable() {
		return c.Status(409).JSON(fiber.Map{"error": fmt.Sprintf("travel is %s and cannot be submitted", travel.Status)})
	}
	if err := s.travels.UpdateStatus(c.Context(), travel.ID, constants.TravelStatusSubmitted); err != nil {
		return respondError(c, err)
	}
	s.logger.Info("travel submitted", "travel_id", travel.ID, "employee_id", travel.EmployeeID)
	travel.Status = constants.TravelStatusSubmitted
	return c.JSON(travel)
}

func (s *Server) handleApproveTravel(c *fiber.Ctx) error {
	return s.decideTravel(c, constants.TravelStatusApproved)
}

func (s *Server) handleRejectTravel(c *fiber.Ctx) error {
	return s.decideTravel(c, constants.TravelStatusRejected)
}

// decideTravel applies a controller decision to a submitted travel.
func (s *Server) decideTravel(c *fiber.Ctx, decision constants.TravelStatus) error {
	role := currentRole(c)
	if role != constants.RoleController && role != constants.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	}
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if travel.Status != constants.TravelStatusSubmitted {
		return c.Status(409).JSON(fiber.Map{"error": "only submitted travels can be decided"})
	}
	if err := s.travels.UpdateStatus(c.Context(), travel.ID, decision); err != nil {
		return respondError(c, err)
	}
	s.logger.Info("travel decided", "travel_id", travel.ID, "decision", decision, "decided_by", currentUserID(c))
	travel.Status = decision
	return c.JSON(travel)
}

func (s *Server) handleExportTravel(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	data, err := s.export.ExportTravelXLSX(c.Context(), travel.ID)
	if err != nil {
		return respondError(c, err)
	}
	filename := fmt.Sprintf("reisekosten-%s.xlsx", travel.ID)
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}
