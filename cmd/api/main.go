package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/guccio85/proximasuite-sub000/internal/config"
	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	appHTTP "github.com/guccio85/proximasuite-sub000/internal/handler/http"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/cron"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/jwt"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/metrics"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/sse"
	"github.com/guccio85/proximasuite-sub000/internal/repository/memory"
	"github.com/guccio85/proximasuite-sub000/internal/repository/postgresql"
	availabilityService "github.com/guccio85/proximasuite-sub000/internal/service/availability"
	orderService "github.com/guccio85/proximasuite-sub000/internal/service/order"
	planningService "github.com/guccio85/proximasuite-sub000/internal/service/planning"
)

type repositories struct {
	tx         database.Transactor
	orders     order.OrderRepository
	records    availability.RecordRepository
	rules      availability.RecurringRuleRepository
	globalDays availability.GlobalDayRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		slog.Error("Error registering metrics", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Error opening storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	orderSvc := orderService.NewOrderService(repos.tx, repos.orders, recorder)
	availabilitySvc := availabilityService.NewAvailabilityService(repos.records, repos.rules, repos.globalDays)
	planningSvc := planningService.NewPlanningService(repos.orders, repos.records, repos.rules, repos.globalDays, recorder, cfg.Planning.CompanyName)

	scheduler := cron.NewScheduler(ctx)
	cron.NewConflictJobs(planningSvc).RegisterJobs(scheduler, cfg.Planning.ConflictSweepInterval)
	scheduler.Start()

	hub := sse.NewHub()
	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:             logger,
			CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
			MetricsHandler:     recorder.Handler(),
		},
		JWTService,
		appHTTP.NewOrderHandler(orderSvc, hub),
		appHTTP.NewAvailabilityHandler(availabilitySvc, hub),
		appHTTP.NewPlanningHandler(planningSvc, orderSvc, hub),
		appHTTP.NewEventHandler(hub),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "addr", srv.Addr, "storage", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
	slog.Info("Server stopped")
}

func newLogger(app config.AppConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(app.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "proximasuite"),
		slog.String("env", app.Env),
	)
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		slog.Warn("Using in-memory storage; data is lost on restart")
		return repositories{
			tx:         memory.NewTransactor(store),
			orders:     memory.NewOrderRepository(store),
			records:    memory.NewRecordRepository(store),
			rules:      memory.NewRecurringRuleRepository(store),
			globalDays: memory.NewGlobalDayRepository(store),
			close:      func() {},
		}, nil
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := database.NewPostgreSQLDB(connectCtx, cfg.DatabaseURL())
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			tx:         postgresql.NewTransactor(db),
			orders:     postgresql.NewOrderRepository(db),
			records:    postgresql.NewRecordRepository(db),
			rules:      postgresql.NewRecurringRuleRepository(db),
			globalDays: postgresql.NewGlobalDayRepository(db),
			close:      db.Close,
		}, nil
	}
}
