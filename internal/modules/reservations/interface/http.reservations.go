package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/httputil"
	"hotelReservas/internal/shared/normalization"
)

// StaffActions runs the mutating operations on behalf of the authenticated staff member.
type StaffActions interface {
	Create(ctx context.Context, input domain.ReservationInput) (*domain.Reservation, error)
	Update(ctx context.Context, id domain.ID, input domain.ReservationInput) (*domain.Reservation, error)
	Cancel(ctx context.Context, id domain.ID) (*domain.ActionResult, error)
	MarkActive(ctx context.Context, id domain.ID) (*domain.ActionResult, error)
	MarkWaiting(ctx context.Context, id domain.ID) (*domain.ActionResult, error)
	RegisterPayment(ctx context.Context, id domain.ID, amount domain.Amount) (*domain.PaymentResult, error)
	AddRooms(ctx context.Context, id domain.ID, roomIDs []domain.ID) (*domain.Reservation, error)
}

var errInvalidPayload = errors.New("invalid payload")

type ReservationsHandler struct {
	api     port.ReservationAPI
	actions StaffActions
	mapper  *httputil.ErrorMapper
}

func NewReservationsHandler(api port.ReservationAPI, actions StaffActions) *ReservationsHandler {
	return &ReservationsHandler{
		api:     api,
		actions: actions,
		mapper:  NewErrorMapper(),
	}
}

// NewErrorMapper maps reservation client failures onto gateway statuses.
func NewErrorMapper() *httputil.ErrorMapper {
	return httputil.NewErrorMapper().
		WithMappings(
			httputil.ErrorMapping{Error: errInvalidPayload, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: port.ErrValidation, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: port.ErrTokenUnavailable, Status: http.StatusUnauthorized},
			httputil.ErrorMapping{Error: port.ErrServerReported},
			httputil.ErrorMapping{Error: port.ErrHTTPStatus},
			httputil.ErrorMapping{Error: port.ErrSchemaMismatch, Status: http.StatusBadGateway},
			httputil.ErrorMapping{Error: port.ErrTransport, Status: http.StatusBadGateway},
		).
		WithDefault(http.StatusInternalServerError, "internal server error")
}

// Register mounts the routes on g, normally /api/reservations.
func (h *ReservationsHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.create)

	g.POST("/verificar_disponibilidad", h.checkAvailability)
	g.GET("/estadisticas", h.statistics)
	g.GET("/esperando_cliente", h.report(h.api.WaitingList))
	g.GET("/estadias_activas", h.report(h.api.ActiveStays))
	g.GET("/vencidas", h.report(h.api.ExpiredList))
	g.GET("/hoy", h.report(h.api.Today))
	g.GET("/buscar", h.search)
	g.GET("/por_fecha", h.byDate)
	g.GET("/por_rango_fechas", h.byDateRange)

	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.cancel)
	g.POST("/:id/marcar_como_activa", h.markActive)
	g.POST("/:id/marcar_como_esperando", h.markWaiting)
	g.POST("/:id/registrar_pago", h.registerPayment)
	g.POST("/:id/agregar_habitaciones", h.addRooms)
	g.GET("/:id/habitaciones", h.rooms)
}

func (h *ReservationsHandler) fail(c echo.Context, err error) error {
	info := h.mapper.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("reservations gateway error", slog.String("path", c.Path()), slog.Int("status", info.Status), slog.Any("error", err))
	}
	return c.JSON(info.Status, map[string]string{"detail": info.Message})
}

func (h *ReservationsHandler) respond(c echo.Context, status int, payload any, err error) error {
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(status, payload)
}

func (h *ReservationsHandler) list(c echo.Context) error {
	items, err := h.api.List(c.Request().Context(), c.QueryParams())
	return h.respond(c, http.StatusOK, items, err)
}

func (h *ReservationsHandler) get(c echo.Context) error {
	timestamp, _ := strconv.ParseInt(strings.TrimSpace(c.QueryParam("_t")), 10, 64)
	opts := domain.CacheOptions{
		Timestamp: timestamp,
		Refresh:   normalization.AsBool(c.QueryParam("refresh")),
	}
	reservation, err := h.api.Get(c.Request().Context(), pathID(c), opts)
	return h.respond(c, http.StatusOK, reservation, err)
}

func (h *ReservationsHandler) create(c echo.Context) error {
	var input domain.ReservationInput
	if err := decodeBody(c, &input); err != nil {
		return h.fail(c, err)
	}
	created, err := h.actions.Create(c.Request().Context(), input)
	return h.respond(c, http.StatusCreated, created, err)
}

func (h *ReservationsHandler) update(c echo.Context) error {
	var input domain.ReservationInput
	if err := decodeBody(c, &input); err != nil {
		return h.fail(c, err)
	}
	updated, err := h.actions.Update(c.Request().Context(), pathID(c), input)
	return h.respond(c, http.StatusOK, updated, err)
}

func (h *ReservationsHandler) cancel(c echo.Context) error {
	result, err := h.actions.Cancel(c.Request().Context(), pathID(c))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *ReservationsHandler) markActive(c echo.Context) error {
	result, err := h.actions.MarkActive(c.Request().Context(), pathID(c))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *ReservationsHandler) markWaiting(c echo.Context) error {
	result, err := h.actions.MarkWaiting(c.Request().Context(), pathID(c))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *ReservationsHandler) registerPayment(c echo.Context) error {
	var payload map[string]any
	if err := decodeBody(c, &payload); err != nil {
		return h.fail(c, err)
	}
	amount, ok := normalization.AsFloat64(payload["monto"])
	if !ok {
		return h.fail(c, port.NewValidationError(port.OpRegisterPayment, "payment amount must be a number"))
	}
	result, err := h.actions.RegisterPayment(c.Request().Context(), pathID(c), domain.Amount(amount))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *ReservationsHandler) addRooms(c echo.Context) error {
	var payload struct {
		Rooms []domain.ID `json:"habitaciones_adicionales"`
	}
	if err := decodeBody(c, &payload); err != nil {
		return h.fail(c, err)
	}
	updated, err := h.actions.AddRooms(c.Request().Context(), pathID(c), payload.Rooms)
	return h.respond(c, http.StatusOK, updated, err)
}

func (h *ReservationsHandler) rooms(c echo.Context) error {
	rooms, err := h.api.Rooms(c.Request().Context(), pathID(c))
	return h.respond(c, http.StatusOK, rooms, err)
}

func (h *ReservationsHandler) checkAvailability(c echo.Context) error {
	var payload map[string]any
	if err := decodeBody(c, &payload); err != nil {
		return h.fail(c, err)
	}
	date := normalization.AsString(payload["fecha_reserva"])
	count := normalization.AsInt(payload["numero_habitaciones"])
	result, err := h.api.CheckAvailability(c.Request().Context(), date, count)
	return h.respond(c, http.StatusOK, result, err)
}

func (h *ReservationsHandler) statistics(c echo.Context) error {
	stats, err := h.api.Statistics(c.Request().Context())
	return h.respond(c, http.StatusOK, stats, err)
}

func (h *ReservationsHandler) report(fetch func(context.Context) ([]domain.Reservation, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := fetch(c.Request().Context())
		return h.respond(c, http.StatusOK, items, err)
	}
}

func (h *ReservationsHandler) search(c echo.Context) error {
	items, err := h.api.Search(c.Request().Context(), c.QueryParam("q"))
	return h.respond(c, http.StatusOK, items, err)
}

func (h *ReservationsHandler) byDate(c echo.Context) error {
	items, err := h.api.ByDate(c.Request().Context(), c.QueryParam("fecha"))
	return h.respond(c, http.StatusOK, items, err)
}

func (h *ReservationsHandler) byDateRange(c echo.Context) error {
	items, err := h.api.ByDateRange(c.Request().Context(), c.QueryParam("fecha_inicio"), c.QueryParam("fecha_fin"))
	return h.respond(c, http.StatusOK, items, err)
}

func pathID(c echo.Context) domain.ID {
	return domain.ID(strings.TrimSpace(c.Param("id")))
}

func decodeBody(c echo.Context, target any) error {
	body := c.Request().Body
	if body == nil {
		return errInvalidPayload
	}
	if err := json.NewDecoder(body).Decode(target); err != nil {
		slog.Debug("reservations gateway payload rejected", slog.String("path", c.Path()), slog.Any("error", err))
		return errInvalidPayload
	}
	return nil
}
