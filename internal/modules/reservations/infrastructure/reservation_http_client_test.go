package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/auth"
	"hotelReservas/internal/shared/kvstore"
)

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		header: r.Header.Clone(),
		body:   string(payload),
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeAPI) respond(status int, body string) {
	f.mu.Lock()
	f.status, f.body = status, body
	f.mu.Unlock()
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("expected a request to reach the api")
	}
	return f.requests[len(f.requests)-1]
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(1500 * time.Millisecond)
	return c.now
}

func newTestClient(t *testing.T, api *fakeAPI, tokens auth.TokenProvider) *ReservationHTTPClient {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	clock := &steppingClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	return NewReservationHTTPClient(server.URL+"/api/", 0, server.Client(), tokens,
		WithClock(clock.Now),
		WithRequestIDs(func() string { return "req-1" }),
	)
}

func validInput() domain.ReservationInput {
	return domain.ReservationInput{
		Client:          "A",
		ReservationDate: "2024-01-01",
		RoomCount:       2,
		TotalAmount:     100,
		SelectedRooms:   []domain.ID{"1", "2"},
	}
}

func TestCreateRejectsInvalidInputWithoutNetwork(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	cases := []struct {
		name   string
		mutate func(*domain.ReservationInput)
		msg    string
	}{
		{name: "client", mutate: func(in *domain.ReservationInput) { in.Client = "" }, msg: "client is required"},
		{name: "date", mutate: func(in *domain.ReservationInput) { in.ReservationDate = "" }, msg: "reservation date is required"},
		{name: "room count", mutate: func(in *domain.ReservationInput) { in.RoomCount = 0 }, msg: "room count is required"},
		{name: "amount", mutate: func(in *domain.ReservationInput) { in.TotalAmount = 0 }, msg: "total amount is required"},
		{name: "rooms", mutate: func(in *domain.ReservationInput) { in.SelectedRooms = []domain.ID{} }, msg: "at least one room must be selected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := client.Create(context.Background(), input)
			if !errors.Is(err, port.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, err.Error())
			}
		})
	}
	if api.count() != 0 {
		t.Fatalf("expected no requests, got %d", api.count())
	}
}

func TestCreateReturnsServerPayloadUnchanged(t *testing.T) {
	echo := `{"cliente":"A","fecha_reserva":"2024-01-01","numero_habitaciones":2,"monto_total":100,"habitaciones_seleccionadas":[1,2]}`
	api := &fakeAPI{status: http.StatusCreated, body: echo}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	created, err := client.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	encoded, _ := json.Marshal(created)
	if string(encoded) != echo {
		t.Fatalf("expected %s, got %s", echo, encoded)
	}

	req := api.last(t)
	if req.method != http.MethodPost || req.path != "/api/reservations/" {
		t.Fatalf("unexpected request: %s %s", req.method, req.path)
	}
	if req.body != echo {
		t.Fatalf("unexpected body: %s", req.body)
	}
	if req.header.Get("Content-Type") != "application/json" || req.header.Get("X-Request-ID") != "req-1" {
		t.Fatalf("unexpected headers: %v", req.header)
	}
	if req.query.Get("_timestamp") != "" {
		t.Fatal("mutations must not carry the read cache buster")
	}
}

func TestCreateAndUpdateSendCallerBody(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		method string
		path   string
		call   func(*ReservationHTTPClient, domain.ReservationInput) error
	}{
		{
			name:   "partial update",
			body:   `{"estado":"activa"}`,
			method: http.MethodPut,
			path:   "/api/reservations/5/",
			call: func(c *ReservationHTTPClient, in domain.ReservationInput) error {
				_, err := c.Update(context.Background(), "5", in)
				return err
			},
		},
		{
			name:   "create with extra fields",
			body:   `{"cliente":"A","fecha_reserva":"2024-01-01","numero_habitaciones":2,"monto_total":"100.50","habitaciones_seleccionadas":[1,2],"observaciones":"late arrival","tipo_reserva":"grupal"}`,
			method: http.MethodPost,
			path:   "/api/reservations/",
			call: func(c *ReservationHTTPClient, in domain.ReservationInput) error {
				_, err := c.Create(context.Background(), in)
				return err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{body: `{"id":5,"estado":"activa"}`}
			client := newTestClient(t, api, auth.StaticToken("tok"))

			var input domain.ReservationInput
			if err := json.Unmarshal([]byte(tc.body), &input); err != nil {
				t.Fatalf("decode input: %v", err)
			}
			if err := tc.call(client, input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			req := api.last(t)
			if req.method != tc.method || req.path != tc.path {
				t.Fatalf("unexpected request: %s %s", req.method, req.path)
			}
			if req.body != tc.body {
				t.Fatalf("expected body %s, got %s", tc.body, req.body)
			}
		})
	}
}

func TestUpdateOmitsUnsetTypedFields(t *testing.T) {
	api := &fakeAPI{body: `{"id":5}`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	if _, err := client.Update(context.Background(), "5", domain.ReservationInput{Status: domain.ReservationStatusActive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.last(t).body; got != `{"estado":"activa"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestReadsDefeatCaches(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	client := newTestClient(t, api, auth.StaticToken("tok"))
	ctx := context.Background()

	reads := []func() error{
		func() error { _, err := client.List(ctx, nil); return err },
		func() error { _, err := client.Today(ctx); return err },
		func() error { _, err := client.WaitingList(ctx); return err },
		func() error { _, err := client.Rooms(ctx, "3"); return err },
	}

	var stamps []string
	for i, read := range reads {
		if err := read(); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		req := api.last(t)
		if req.header.Get("Cache-Control") != "no-cache, no-store, must-revalidate" {
			t.Fatalf("read %d missing cache-control: %q", i, req.header.Get("Cache-Control"))
		}
		if req.header.Get("Pragma") != "no-cache" || req.header.Get("Expires") != "0" {
			t.Fatalf("read %d missing pragma/expires: %v", i, req.header)
		}
		stamp := req.query.Get("_timestamp")
		if stamp == "" {
			t.Fatalf("read %d missing _timestamp", i)
		}
		stamps = append(stamps, stamp)
	}
	for i := 1; i < len(stamps); i++ {
		if stamps[i] == stamps[i-1] {
			t.Fatalf("expected _timestamp to change between reads, got %v", stamps)
		}
	}
}

func TestGetAppendsFreshnessHints(t *testing.T) {
	api := &fakeAPI{body: `{"id":9,"estado":"pendiente"}`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	reservation, err := client.Get(context.Background(), "9", domain.CacheOptions{Timestamp: 1714550400000, Refresh: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reservation.ID != "9" || reservation.Status != domain.ReservationStatusPending {
		t.Fatalf("unexpected reservation: %+v", reservation)
	}
	req := api.last(t)
	if req.path != "/api/reservations/9/" {
		t.Fatalf("unexpected path: %s", req.path)
	}
	if req.query.Get("_t") != "1714550400000" || req.query.Get("refresh") != "true" || req.query.Get("_timestamp") == "" {
		t.Fatalf("unexpected query: %v", req.query)
	}
}

func TestAuthorizationFollowsTokenStore(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	store := kvstore.NewMemory()
	client := newTestClient(t, api, auth.NewStoreTokenProvider(store))
	ctx := context.Background()

	store.Set(auth.AccessTokenKey, "first")
	if _, err := client.ExpiredList(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.last(t).header.Get("Authorization"); got != "Bearer first" {
		t.Fatalf("expected first token, got %q", got)
	}

	store.Set(auth.AccessTokenKey, "second")
	if _, err := client.Rooms(ctx, "4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.last(t).header.Get("Authorization"); got != "Bearer second" {
		t.Fatalf("expected second token, got %q", got)
	}

	store.Delete(auth.AccessTokenKey)
	if _, err := client.ActiveStays(ctx); err != nil {
		t.Fatalf("empty token must not block the call: %v", err)
	}
	// net/http trims header values on write, so "Bearer " arrives as the bare scheme.
	header := api.last(t).header
	if values, ok := header["Authorization"]; !ok || len(values) != 1 || values[0] != "Bearer" {
		t.Fatalf("expected bare bearer scheme, got %q", header.Values("Authorization"))
	}
}

func TestTokenProviderFailureStopsCall(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, auth.TokenProviderFunc(func(context.Context) (string, error) {
		return "", errors.New("token store offline")
	}))

	_, err := client.Statistics(context.Background())
	if !errors.Is(err, port.ErrTokenUnavailable) {
		t.Fatalf("expected token error, got %v", err)
	}
	if api.count() != 0 {
		t.Fatal("no request expected without a token source")
	}
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		msg    string
		kind   error
	}{
		{name: "detail", status: http.StatusBadRequest, body: `{"detail":"X"}`, msg: "X", kind: port.ErrServerReported},
		{name: "error", status: http.StatusConflict, body: `{"error":"Y"}`, msg: "Y", kind: port.ErrServerReported},
		{name: "detail wins", status: http.StatusBadRequest, body: `{"error":"Y","detail":"X"}`, msg: "X", kind: port.ErrServerReported},
		{name: "detail list", status: http.StatusBadRequest, body: `{"detail":["bad date"]}`, msg: "bad date", kind: port.ErrServerReported},
		{name: "error list joined", status: http.StatusBadRequest, body: `{"error":["bad date","no rooms"]}`, msg: "bad date, no rooms", kind: port.ErrServerReported},
		{name: "unparseable", status: http.StatusInternalServerError, body: `<html>boom</html>`, msg: "Error: 500", kind: port.ErrHTTPStatus},
		{name: "empty", status: http.StatusBadGateway, body: ``, msg: "Error: 502", kind: port.ErrHTTPStatus},
		{name: "unrelated fields", status: http.StatusBadRequest, body: `{"monto":["invalid"]}`, msg: "Error: 400", kind: port.ErrHTTPStatus},
	}

	api := &fakeAPI{}
	client := newTestClient(t, api, auth.StaticToken("tok"))
	ctx := context.Background()
	operations := map[string]func() error{
		"cancel":       func() error { _, err := client.Cancel(ctx, "5"); return err },
		"mark active":  func() error { _, err := client.MarkActive(ctx, "5"); return err },
		"statistics":   func() error { _, err := client.Statistics(ctx); return err },
		"search":       func() error { _, err := client.Search(ctx, "ana"); return err },
		"availability": func() error { _, err := client.CheckAvailability(ctx, "2024-05-01", 1); return err },
	}

	for _, tc := range cases {
		for opName, op := range operations {
			t.Run(tc.name+"/"+opName, func(t *testing.T) {
				api.respond(tc.status, tc.body)
				err := op()
				if err == nil {
					t.Fatal("expected error")
				}
				if err.Error() != tc.msg {
					t.Fatalf("expected %q, got %q", tc.msg, err.Error())
				}
				if !errors.Is(err, tc.kind) {
					t.Fatalf("expected kind %v, got %v", tc.kind, err)
				}
				var rerr *port.ReservationError
				if !errors.As(err, &rerr) || rerr.Status != tc.status {
					t.Fatalf("expected status %d on error, got %+v", tc.status, rerr)
				}
			})
		}
	}
}

func TestCancelNotFoundScenario(t *testing.T) {
	api := &fakeAPI{status: http.StatusNotFound, body: `{"error":"not found"}`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	_, err := client.Cancel(context.Background(), "5")
	if err == nil || err.Error() != "not found" {
		t.Fatalf("expected not found, got %v", err)
	}
	req := api.last(t)
	if req.method != http.MethodDelete || req.path != "/api/reservations/5/" {
		t.Fatalf("unexpected request: %s %s", req.method, req.path)
	}
}

func TestCancelAcceptsEmptyBody(t *testing.T) {
	api := &fakeAPI{status: http.StatusNoContent}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	result, err := client.Cancel(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Message != "" {
		t.Fatalf("expected empty confirmation, got %+v", result)
	}
}

func TestCheckAvailabilityScenario(t *testing.T) {
	api := &fakeAPI{body: `{"available": true}`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	result, err := client.CheckAvailability(context.Background(), "2024-05-01", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Available {
		t.Fatal("expected availability")
	}
	encoded, _ := json.Marshal(result)
	if string(encoded) != `{"available":true}` {
		t.Fatalf("expected payload returned unchanged, got %s", encoded)
	}

	req := api.last(t)
	if req.method != http.MethodPost || req.path != "/api/reservations/verificar_disponibilidad/" {
		t.Fatalf("unexpected request: %s %s", req.method, req.path)
	}
	if req.body != `{"fecha_reserva":"2024-05-01","numero_habitaciones":3}` {
		t.Fatalf("unexpected body: %s", req.body)
	}
}

func TestListUnwrapsResultsEnvelope(t *testing.T) {
	api := &fakeAPI{body: `{"count":2,"next":null,"results":[{"id":1},{"id":2}]}`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	items, err := client.List(context.Background(), url.Values{"estado": {"activa"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[1].ID != "2" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if api.last(t).query.Get("estado") != "activa" {
		t.Fatal("expected filter to be forwarded")
	}

	api.respond(http.StatusOK, `[{"id":3}]`)
	items, err = client.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "3" {
		t.Fatalf("unexpected bare list: %+v", items)
	}
}

func TestListSchemaMismatch(t *testing.T) {
	api := &fakeAPI{body: `{"count":0}`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	if _, err := client.List(context.Background(), nil); !errors.Is(err, port.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	api.respond(http.StatusOK, `[{"id":1,"monto_total":"abc"}]`)
	if _, err := client.Today(context.Background()); !errors.Is(err, port.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for bad amount, got %v", err)
	}
}

func TestActionEndpoints(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, auth.StaticToken("tok"))
	ctx := context.Background()

	api.respond(http.StatusOK, `{"message":"Pago registrado","monto_pagado":"150.00","saldo_pendiente":"50.00"}`)
	payment, err := client.RegisterPayment(ctx, "7", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.PaidAmount != 150 || payment.Balance != 50 {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	req := api.last(t)
	if req.path != "/api/reservations/7/registrar_pago/" || req.body != `{"monto":50}` {
		t.Fatalf("unexpected payment request: %s %s", req.path, req.body)
	}

	api.respond(http.StatusOK, `{"message":"ok","reserva":{"id":7,"habitaciones_seleccionadas":[1,2,3]}}`)
	updated, err := client.AddRooms(ctx, "7", []domain.ID{"3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != "7" || len(updated.SelectedRooms) != 3 {
		t.Fatalf("expected nested reservation, got %+v", updated)
	}
	req = api.last(t)
	if req.path != "/api/reservations/7/agregar_habitaciones/" || req.body != `{"habitaciones_adicionales":[3]}` {
		t.Fatalf("unexpected add rooms request: %s %s", req.path, req.body)
	}

	api.respond(http.StatusOK, `{"message":"ok","estado":"activa"}`)
	action, err := client.MarkActive(ctx, "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != domain.ReservationStatusActive {
		t.Fatalf("unexpected status: %q", action.Status)
	}
	if req := api.last(t); req.path != "/api/reservations/7/marcar_como_activa/" || req.body != "" {
		t.Fatalf("unexpected mark active request: %s %q", req.path, req.body)
	}

	if _, err := client.MarkWaiting(ctx, "7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req := api.last(t); req.path != "/api/reservations/7/marcar_como_esperando/" {
		t.Fatalf("unexpected mark waiting path: %s", req.path)
	}

	api.respond(http.StatusOK, `{"id":7,"estado":"pendiente"}`)
	if _, err := client.Update(ctx, "7", validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req := api.last(t); req.method != http.MethodPut || req.path != "/api/reservations/7/" {
		t.Fatalf("unexpected update request: %s %s", req.method, req.path)
	}
}

func TestLocalChecksOnIdentifiedOperations(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, auth.StaticToken("tok"))
	ctx := context.Background()

	checks := map[string]func() error{
		"cancel blank id":  func() error { _, err := client.Cancel(ctx, " "); return err },
		"get blank id":     func() error { _, err := client.Get(ctx, "", domain.CacheOptions{}); return err },
		"zero payment":     func() error { _, err := client.RegisterPayment(ctx, "1", 0); return err },
		"no rooms to add":  func() error { _, err := client.AddRooms(ctx, "1", nil); return err },
		"rooms blank id":   func() error { _, err := client.Rooms(ctx, ""); return err },
		"update blank id":  func() error { _, err := client.Update(ctx, "", validInput()); return err },
		"waiting blank id": func() error { _, err := client.MarkWaiting(ctx, ""); return err },
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			if err := check(); !errors.Is(err, port.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if api.count() != 0 {
		t.Fatalf("expected no requests, got %d", api.count())
	}
}

func TestReportQueries(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	client := newTestClient(t, api, auth.StaticToken("tok"))
	ctx := context.Background()

	if _, err := client.Search(ctx, "ana maría & co"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := api.last(t)
	if req.path != "/api/reservations/buscar/" || req.query.Get("q") != "ana maría & co" {
		t.Fatalf("unexpected search request: %s %v", req.path, req.query)
	}

	if _, err := client.ByDate(ctx, "2024-05-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req := api.last(t); req.path != "/api/reservations/por_fecha/" || req.query.Get("fecha") != "2024-05-01" {
		t.Fatalf("unexpected by date request: %s %v", req.path, req.query)
	}

	if _, err := client.ByDateRange(ctx, "2024-05-01", "2024-05-31"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req = api.last(t)
	if req.path != "/api/reservations/por_rango_fechas/" || req.query.Get("fecha_inicio") != "2024-05-01" || req.query.Get("fecha_fin") != "2024-05-31" {
		t.Fatalf("unexpected range request: %s %v", req.path, req.query)
	}
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := NewReservationHTTPClient(base, time.Second, nil, auth.StaticToken("tok"))
	_, err := client.Today(context.Background())
	if !errors.Is(err, port.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var rerr *port.ReservationError
	if !errors.As(err, &rerr) || rerr.Unwrap() == nil {
		t.Fatalf("expected wrapped cause, got %+v", err)
	}
}

func TestContextCancellationSurfaces(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	client := newTestClient(t, api, auth.StaticToken("tok"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Today(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to be unwrappable, got %v", err)
	}
}
