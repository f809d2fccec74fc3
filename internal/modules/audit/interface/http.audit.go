package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelReservas/internal/modules/audit/domain"
	"hotelReservas/internal/shared/normalization"
)

type RecentReader interface {
	Recent(ctx context.Context, limit int) ([]domain.Entry, error)
}

// NewRecentHandler serves GET /api/audit?limit=N, newest first.
func NewRecentHandler(store RecentReader) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := normalization.AsInt(c.QueryParam("limit"))
		entries, err := store.Recent(c.Request().Context(), limit)
		if err != nil {
			slog.Error("audit query failed", slog.Int("limit", limit), slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "audit log unavailable"})
		}
		return c.JSON(http.StatusOK, entries)
	}
}
