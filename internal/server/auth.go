package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/reisekosten/reisekosten/internal/common"
)

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email and password are required"})
	}

	user, err := s.users.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
		}
		return respondError(c, err)
	}
	if !user.IsActive {
		return c.Status(401).JSON(fiber.Map{"error": "account disabled"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login failed", "email", req.Email)
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := signToken(s.cfg.Auth.SecretKey, user.ID, user.Role, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	s.logger.Info("login ok", "user_id", user.ID, "role", user.Role)
	return c.JSON(fiber.Map{"token": token, "user": user})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
