package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/anon381/Movie-Search-App/internal/errs"
)

// TokenVerifier validates a bearer token and returns the user id.
// Satisfied by *auth.Manager.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// UserIDKey is the c.Locals key the middleware stores the caller under.
const UserIDKey = "user_id"

// RequireAuth rejects requests without a valid bearer token. An expired
// token gets a distinct code so clients can prompt re-authentication
// instead of treating it as a hard failure.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, err := verify(verifier, c)
		if err != nil {
			return unauthorized(c, err)
		}
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is
// present and lets anonymous requests through. An expired token is still
// rejected with the session-expired code: silent downgrade to anonymous
// would mask the expiry from the client.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, err := verify(verifier, c)
		if err != nil {
			return unauthorized(c, err)
		}
		if userID != "" {
			c.Locals(UserIDKey, userID)
		}
		return c.Next()
	}
}

// verify extracts and validates the bearer token. An absent header
// yields ("", nil); malformed or invalid tokens yield an error.
func verify(verifier TokenVerifier, c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errs.ErrUnauthorized
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", errs.ErrUnauthorized
	}
	return verifier.VerifyAccess(token)
}

func unauthorized(c fiber.Ctx, err error) error {
	if errors.Is(err, errs.ErrSessionExpired) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "session expired",
			"code":  "session_expired",
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "invalid bearer token",
	})
}
