package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/middleware"
	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/service"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SearchResponse is the paginated search response.
type SearchResponse struct {
	Page         int                       `json:"page"`
	PageSize     int                       `json:"page_size"`
	TotalPages   int                       `json:"total_pages"`
	TotalResults int                       `json:"total_results"`
	Data         []models.SearchResultItem `json:"data"`
}

// SearchHandler handles HTTP requests for search and details.
type SearchHandler struct {
	svc     *service.SearchService
	history *service.HistoryService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.SearchService, history *service.HistoryService) *SearchHandler {
	return &SearchHandler{svc: svc, history: history}
}

// Health returns service health status.
func (h *SearchHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-search",
	})
}

// Search returns one page of results for the query parameters.
func (h *SearchHandler) Search(c fiber.Ctx) error {
	q := models.SearchQuery{
		Text: c.Query("query"),
		Page: fiber.Query(c, "page", 1),
		Year: c.Query("year"),
		Type: c.Query("type", models.TypeMovie),
	}
	q.Validate()

	result, err := h.svc.Search(c.Context(), q)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing to render.
			return nil
		}
		if errors.Is(err, errs.ErrMissingAPIKey) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error: "search is unavailable: provider API key is not configured",
				Code:  "missing_api_key",
			})
		}
		slog.Error("search failed", "query", q.Text, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "search failed",
		})
	}

	// Log history for authenticated callers; best-effort, may be
	// suppressed by the duplicate window.
	if uid, ok := c.Locals(middleware.UserIDKey).(string); ok && uid != "" && len(q.NormalizedText()) >= models.MinQueryLen {
		h.history.Log(uid, models.HistoryEntry{
			Query:       q.NormalizedText(),
			YearFilter:  q.Year,
			TypeFilter:  q.Type,
			ResultCount: result.Total,
		})
	}

	return c.JSON(SearchResponse{
		Page:         q.Page,
		PageSize:     models.PageSize,
		TotalPages:   result.TotalPages(),
		TotalResults: result.Total,
		Data:         result.Items,
	})
}

// Details returns the full record for a single title.
func (h *SearchHandler) Details(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid movie ID",
		})
	}

	detail, err := h.svc.Details(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, errs.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "movie not found",
			})
		case errors.Is(err, errs.ErrMissingAPIKey):
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error: "details are unavailable: provider API key is not configured",
				Code:  "missing_api_key",
			})
		}
		slog.Error("failed to get movie detail", "id", id, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "failed to retrieve movie details",
		})
	}

	return c.JSON(detail)
}
