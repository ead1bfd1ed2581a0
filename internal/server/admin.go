package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type userRequest struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	Company    string  `json:"company"`
	Department *string `json:"department"`
	CostCenter *string `json:"cost_center"`
	IsActive   *bool   `json:"is_active"`
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users, err := s.users.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email, name and password are required"})
	}
	if req.Role == "" {
		req.Role = string(constants.RoleEmployee)
	}
	if !constants.ValidUserRole(req.Role) {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("unknown role: %s", req.Role)})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	user := &entity.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         constants.UserRole(req.Role),
		Company:      req.Company,
		Department:   req.Department,
		CostCenter:   req.CostCenter,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(c.Context(), user); err != nil {
		return respondError(c, err)
	}
	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return c.Status(201).JSON(user)
}

func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	user, err := s.users.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		if !constants.ValidUserRole(req.Role) {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("unknown role: %s", req.Role)})
		}
		user.Role = constants.UserRole(req.Role)
	}
	if req.Company != "" {
		user.Company = req.Company
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.CostCenter != nil {
		user.CostCenter = req.CostCenter
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(c.Context(), user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	if userID == currentUserID(c) {
		return c.Status(409).JSON(fiber.Map{"error": "cannot delete own account"})
	}
	if err := s.users.Delete(c.Context(), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(204)
}

// handleAssignController links an employee to the controller who approves
// their travels. A null controller_id clears the assignment.
func (s *Server) handleAssignController(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var req struct {
		ControllerID *uuid.UUID `json:"controller_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	if req.ControllerID != nil {
		controller, err := s.users.GetByID(c.Context(), *req.ControllerID)
		if err != nil {
			return respondError(c, err)
		}
		if controller.Role != constants.RoleController {
			return c.Status(400).JSON(fiber.Map{"error": "assignee is not a controller"})
		}
	}

	if err := s.users.AssignController(c.Context(), employeeID, req.ControllerID); err != nil {
		return respondError(c, err)
	}
	s.logger.Info("controller assigned", "employee_id", employeeID, "controller_id", req.ControllerID)
	return c.SendStatus(204)
}
