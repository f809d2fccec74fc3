package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelReservas/internal/shared/auth"
)

// TokenForwarding attaches the caller's bearer token to the request context so the reservations
// client forwards it upstream. With a validator, tokens are verified first and the staff member
// becomes the audit actor.
func TokenForwarding(validator auth.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			token := auth.ExtractBearerToken(req)
			ctx := auth.WithToken(req.Context(), token)

			if validator != nil {
				claims, err := validator.Validate(token)
				if err != nil {
					message := "invalid token"
					if errors.Is(err, auth.ErrMissingToken) {
						message = "missing token"
					}
					slog.Warn("gateway auth failed", slog.String("path", c.Path()), slog.String("ip", c.RealIP()), slog.Any("error", err))
					return c.JSON(http.StatusUnauthorized, map[string]string{"detail": message})
				}
				ctx = auth.WithActor(ctx, claims.Actor())
			}

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
