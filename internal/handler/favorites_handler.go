package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/anon381/Movie-Search-App/internal/middleware"
	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/service"
)

// FavoritesHandler handles HTTP requests for favorites.
type FavoritesHandler struct {
	svc *service.FavoritesService
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(svc *service.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{svc: svc}
}

// FavoritesResponse carries the merged favorites view. Error is set when
// the cloud fetch failed and the list fell back to local entries.
type FavoritesResponse struct {
	Data  []models.FavoriteEntry `json:"data"`
	Error string                 `json:"error,omitempty"`
}

// List returns the favorites selected by the caller's identity.
func (h *FavoritesHandler) List(c fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	entries, err := h.svc.List(c.Context(), userID)
	resp := FavoritesResponse{Data: entries}
	if err != nil {
		slog.Error("favorites fetch failed", "error", err)
		resp.Error = "failed to load cloud favorites"
	}
	return c.JSON(resp)
}

// Toggle flips membership for the posted item.
func (h *FavoritesHandler) Toggle(c fiber.Ctx) error {
	var item models.FavoriteEntry
	if err := c.Bind().Body(&item); err != nil || item.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "a favorite requires an id",
		})
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	if err := h.svc.Toggle(c.Context(), userID, item); err != nil {
		// The optimistic in-memory change already happened; report the
		// write failure without pretending to roll back.
		slog.Error("favorite write failed", "id", item.ID, "error", err)
	}

	return c.JSON(fiber.Map{
		"id":        item.ID,
		"favorited": h.svc.Contains(userID, item.ID),
	})
}
