package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reisekosten/reisekosten/constants"
)

const (
	localUserID = "user_id"
	localRole   = "role"
)

// signToken issues an HS256 token carrying the user id and role.
func signToken(secret string, userID uuid.UUID, role constants.UserRole, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": string(role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (uuid.UUID, constants.UserRole, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid subject")
	}
	roleStr, _ := claims["role"].(string)
	if !constants.ValidUserRole(roleStr) {
		return uuid.Nil, "", fmt.Errorf("invalid role")
	}
	return userID, constants.UserRole(roleStr), nil
}

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(auth, "Bearer ")
		userID, role, err := parseToken(s.cfg.Auth.SecretKey, tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(localUserID, userID)
		c.Locals(localRole, role)
		return c.Next()
	}
}

// requireRole gates a route group to the given roles.
func (s *Server) requireRole(roles ...constants.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := currentRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	}
}

func currentUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(localUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func currentRole(c *fiber.Ctx) constants.UserRole {
	if role, ok := c.Locals(localRole).(constants.UserRole); ok {
		return role
	}
	return ""
}
