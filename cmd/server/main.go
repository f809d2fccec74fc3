package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"hotelReservas/internal/config"
	auditinfra "hotelReservas/internal/modules/audit/infrastructure"
	audittransport "hotelReservas/internal/modules/audit/interface"
	rthandler "hotelReservas/internal/modules/realtime/application/handler"
	rtusecase "hotelReservas/internal/modules/realtime/application/usecase"
	rtinfra "hotelReservas/internal/modules/realtime/infrastructure"
	rttransport "hotelReservas/internal/modules/realtime/interface"
	"hotelReservas/internal/modules/reservations/application/usecase"
	"hotelReservas/internal/modules/reservations/infrastructure"
	transport "hotelReservas/internal/modules/reservations/interface"
	"hotelReservas/internal/platform/broker"
	"hotelReservas/internal/shared/auth"
	"hotelReservas/internal/shared/kvstore"
	"hotelReservas/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := logging.Setup(logging.Config{
		Directory: cfg.Logging.Directory,
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	}, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", slog.Any("error", err))
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// JWT validator used only when a key is configured; otherwise the reservations API decides.
	var validator auth.TokenValidator
	if cfg.Security.Enabled() {
		jwtValidator, err := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
		if err != nil {
			return fmt.Errorf("jwt validator: %w", err)
		}
		validator = jwtValidator
	}
	slog.Info("gateway auth", slog.Bool("verifyTokens", validator != nil))

	tokenStore := kvstore.NewMemory()
	syncServiceToken(tokenStore, cfg.API.ServiceToken)
	go reloadServiceTokenOnHangup(ctx, tokenStore)

	client := infrastructure.NewReservationHTTPClient(cfg.API.BaseURL, cfg.API.Timeout, nil, auth.ContextTokenProvider{})
	slog.Info("reservations api", slog.String("baseUrl", cfg.API.BaseURL), slog.Duration("timeout", cfg.API.Timeout))

	auditStore, err := auditinfra.Open(ctx, cfg.Audit.Driver, cfg.Audit.DSN)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer auditStore.Close()

	hub := rtinfra.NewHub()
	broadcastUC := rtusecase.NewBroadcastUseCase(hub)
	actions := usecase.NewReservationActionsUseCase(client, hub, infrastructure.NewAuditTrail(auditStore))
	refresher := usecase.NewBoardRefresher(client, hub, auth.NewStoreTokenProvider(tokenStore), 2*cfg.API.Timeout)

	// Kafka
	registry := rtinfra.NewHandlerRegistry()
	for _, topic := range cfg.Kafka.Topics {
		registry.Register(rthandler.NewReservationEventsHandler(topic, nil, broadcastUC))
	}
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", cfg.Kafka.Topics))
	consumers := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, registry.Topics())

	scheduler := cron.New()
	if _, err := refresher.Schedule(scheduler, cfg.Scheduler.RefreshSchedule); err != nil {
		return err
	}
	scheduler.Start()
	slog.Info("board refresher scheduled", slog.String("schedule", cfg.Scheduler.RefreshSchedule))

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID(), middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "clients": hub.ClientCount()})
	})
	api := e.Group("/api", transport.TokenForwarding(validator))
	transport.NewReservationsHandler(client, actions).Register(api.Group("/reservations"))
	registerAudit(api, auditStore, validator)
	e.GET("/ws/reservations", rttransport.NewReservationsWebsocketHandler(hub, rttransport.NewUpgrader(cfg.Server.AllowedOrigins), validator, refresher))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler(cfg.Server.AllowedOrigins)(e),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	<-scheduler.Stop().Done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
	stop()
	consumers.Wait()
	return nil
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Accept", "X-Request-ID"}),
		handlers.AllowCredentials(),
	)
}

// registerAudit exposes the audit log only when inbound tokens are verified, since entries carry staff ids.
func registerAudit(api *echo.Group, store audittransport.RecentReader, validator auth.TokenValidator) {
	if validator == nil {
		slog.Warn("audit endpoint disabled: JWT_SECRET or JWT_PUBLIC_KEY not configured")
		return
	}
	api.GET("/audit", audittransport.NewRecentHandler(store))
}

type tokenSlot interface {
	Set(key, value string)
	Delete(key string)
}

// syncServiceToken stores token for background jobs; a blank token clears the slot.
func syncServiceToken(store tokenSlot, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		store.Delete(auth.AccessTokenKey)
		return
	}
	store.Set(auth.AccessTokenKey, token)
}

// reloadServiceTokenOnHangup re-reads SERVICE_ACCESS_TOKEN from the environment and .env on SIGHUP.
func reloadServiceTokenOnHangup(ctx context.Context, store tokenSlot) {
	hangups := make(chan os.Signal, 1)
	signal.Notify(hangups, syscall.SIGHUP)
	defer signal.Stop(hangups)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hangups:
			if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("reload .env failed", slog.Any("error", err))
			}
			token := os.Getenv("SERVICE_ACCESS_TOKEN")
			syncServiceToken(store, token)
			slog.Info("service token reloaded", slog.Bool("present", strings.TrimSpace(token) != ""))
		}
	}
}
