// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strings"

	"nex/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces a valid identity-provider token. On success the
// provider subject is stored in c.Locals("externalID"); mapping the subject
// to an internal user id is the server layer's job.
func AuthRequired(c *fiber.Ctx) error {
	subject, err := bearerSubject(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals("externalID", subject)
	return c.Next()
}

// OptionalAuth stores the provider subject when a valid token is present and
// proceeds silently otherwise. Mutating handlers behind this middleware treat
// the anonymous case as a benign no-op.
func OptionalAuth(c *fiber.Ctx) error {
	if subject, err := bearerSubject(c); err == nil {
		c.Locals("externalID", subject)
	}
	return c.Next()
}

func bearerSubject(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// The subject claim carries the identity provider's user id (RFC 7519).
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	return subject, nil
}
