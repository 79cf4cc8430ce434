package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/middleware"
	"github.com/anon381/Movie-Search-App/internal/service"
)

// HistoryHandler handles HTTP requests for search history.
type HistoryHandler struct {
	svc *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List returns the most recent history entries, newest first.
func (h *HistoryHandler) List(c fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	entries, err := h.svc.List(c.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "sign in to view search history",
			})
		}
		slog.Error("failed to list history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve search history",
		})
	}
	return c.JSON(fiber.Map{"data": entries})
}
