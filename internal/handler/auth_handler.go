package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/anon381/Movie-Search-App/internal/auth"
	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/models"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	manager *auth.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(manager *auth.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// sessionResponse is the wire shape of an established session.
type sessionResponse struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toSessionResponse(s *models.Session) sessionResponse {
	return sessionResponse{
		UserID:       s.UserID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	}
}

// SignUp registers a new account with email and password.
func (h *AuthHandler) SignUp(c fiber.Ctx) error {
	var req credentialsRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	err := h.manager.SignUpWithPassword(c.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, errs.ErrConfirmationRequired):
		// Success without a session: confirmation email is on its way.
		return c.JSON(fiber.Map{"status": "confirmation_required", "email": req.Email})
	case errors.Is(err, errs.ErrAlreadyExists):
		// Distinct classification so the client switches to sign-in
		// instead of showing a generic error.
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: "an account with this email already exists",
			Code:  "account_exists",
		})
	case err != nil:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// SignIn authenticates with email and password.
func (h *AuthHandler) SignIn(c fiber.Ctx) error {
	var req credentialsRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	sess, err := h.manager.SignInWithPassword(c.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Error: "too many failed attempts, try again later",
			Code:  "locked",
		})
	case errors.Is(err, errs.ErrConfirmationRequired):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error: "confirm your email before signing in",
			Code:  "confirmation_required",
		})
	case errors.Is(err, errs.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "invalid email or password",
		})
	case err != nil:
		slog.Error("sign-in failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "sign-in failed"})
	}
	return c.JSON(toSessionResponse(sess))
}

// MagicLink emails a one-time sign-in link.
func (h *AuthHandler) MagicLink(c fiber.Ctx) error {
	var req emailRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.manager.SignInWithMagicLink(c.Context(), req.Email); err != nil {
		slog.Error("magic link failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "could not send sign-in link"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "sent"})
}

// ConsumeMagicLink exchanges an emailed token for a session.
func (h *AuthHandler) ConsumeMagicLink(c fiber.Ctx) error {
	return h.consumeToken(c, h.manager.ConsumeMagicLink)
}

// Confirm consumes a sign-up confirmation token and signs the user in.
func (h *AuthHandler) Confirm(c fiber.Ctx) error {
	return h.consumeToken(c, h.manager.ConfirmSignUp)
}

func (h *AuthHandler) consumeToken(c fiber.Ctx, consume func(ctx context.Context, token string) (*models.Session, error)) error {
	var req tokenRequest
	if err := c.Bind().Body(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "token is required"})
	}
	sess, err := consume(c.Context(), req.Token)
	if err != nil {
		if errors.Is(err, errs.ErrTokenInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "link is invalid or has expired",
				Code:  "token_invalid",
			})
		}
		slog.Error("token consume failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "sign-in failed"})
	}
	return c.JSON(toSessionResponse(sess))
}

// ResendConfirmation issues a fresh confirmation email.
func (h *AuthHandler) ResendConfirmation(c fiber.Ctx) error {
	var req emailRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.manager.ResendConfirmation(c.Context(), req.Email); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "unknown email address"})
		}
		slog.Error("resend confirmation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "could not resend confirmation"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "sent"})
}

// RequestPasswordReset emails a reset token. Always accepted so the
// response does not reveal account existence.
func (h *AuthHandler) RequestPasswordReset(c fiber.Ctx) error {
	var req emailRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.manager.RequestPasswordReset(c.Context(), req.Email); err != nil {
		slog.Error("password reset request failed", "error", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "sent"})
}

// ResetPassword consumes a reset token and stores the new password.
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req resetRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.manager.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, errs.ErrTokenInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "reset link is invalid or has expired",
				Code:  "token_invalid",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req refreshRequest
	if err := c.Bind().Body(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "refresh_token is required"})
	}
	sess, err := h.manager.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, errs.ErrSessionExpired) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "session expired",
				Code:  "session_expired",
			})
		}
		slog.Error("refresh failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "refresh failed"})
	}
	return c.JSON(toSessionResponse(sess))
}

// SignOut destroys the active session.
func (h *AuthHandler) SignOut(c fiber.Ctx) error {
	if err := h.manager.SignOut(c.Context()); err != nil {
		slog.Error("sign-out failed", "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Session reports the manager's current state for the client shell.
func (h *AuthHandler) Session(c fiber.Ctx) error {
	state := h.manager.State()
	magic, password := h.manager.InFlight()
	resp := fiber.Map{
		"phase":              state.Phase.String(),
		"session_expired":    state.SessionExpired,
		"magic_link_pending": magic,
		"password_pending":   password,
	}
	if state.Email != "" {
		resp["email"] = state.Email
	}
	if !state.LockedUntil.IsZero() && state.Phase == auth.PhaseLocked {
		resp["locked_until"] = state.LockedUntil
	}
	if state.Session != nil {
		resp["session"] = fiber.Map{
			"user_id":    state.Session.UserID,
			"email":      state.Session.Email,
			"expires_at": state.Session.ExpiresAt,
		}
	}
	return c.JSON(resp)
}
