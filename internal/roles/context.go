package roles

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SubjectID extracts the authenticated identity id from the JWT in the
// request context.
func SubjectID(c *fiber.Ctx) (string, error) {
	claims, err := tokenClaims(c)
	if err != nil {
		return "", err
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub claim")
	}

	return sub, nil
}

// FromContext returns the role claim carried by the access token. Tokens
// minted before the role claim existed fall back to Patient via Parse.
func FromContext(c *fiber.Ctx) Role {
	claims, err := tokenClaims(c)
	if err != nil {
		return Patient
	}
	role, _ := claims["role"].(string)
	return Parse(role)
}

// EmailFromContext returns the email claim, or "" when absent.
func EmailFromContext(c *fiber.Ctx) string {
	claims, err := tokenClaims(c)
	if err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

func tokenClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
