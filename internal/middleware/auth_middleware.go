package middleware

import (
	"fmt"
	"strings"

	"github.com/devanshmehta/scholarmatch/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Auth verifies the bearer token issued by the auth provider and stores
// the subject as user_id. Sign-in itself happens outside this service;
// only session verification lives here.
func Auth() fiber.Handler {
	secret := []byte(config.LoadAuthConfig().JWTSecret)
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return unauthorized(c)
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c)
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return unauthorized(c)
		}

		c.Locals("user_id", subject)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}
