package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/config"
	"fleet_tracker/internal/jobs"
	"fleet_tracker/internal/logger"
	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/realtime"
	"fleet_tracker/internal/repository"
	"fleet_tracker/internal/routes"
	"fleet_tracker/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration.")
	}

	closer, err := logger.Setup(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging.")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store.")
	}

	hub := realtime.NewHub(cfg.Server.HubQueueSize)
	go hub.Run(ctx)

	var (
		push   services.Publisher = hub
		locker jobs.Locker        = jobs.NewLocalLocker()
	)
	rdb, err := config.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis.")
	}
	if rdb != nil {
		defer rdb.Close()
		broker := realtime.NewRedisBroker(rdb, cfg.Redis.Channel, hub)
		go broker.Relay(ctx)
		push = broker
		locker = jobs.NewRedisLocker(rdb, "fleet:lock:")
		logrus.WithField("addr", cfg.Redis.Addr).Info("Live push and job locking go through Redis.")
	}

	policy, err := services.ParseTripDeletePolicy(cfg.Schedules.TripDeletePolicy)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid trip delete policy.")
	}

	users := services.NewUserService(store)
	if cfg.Bootstrap.AdminUsername != "" {
		created, err := users.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create bootstrap admin.")
		}
		if created {
			logrus.WithField("username", cfg.Bootstrap.AdminUsername).Info("Bootstrap admin created.")
		}
	}

	notifications := services.NewNotificationService(store, push)
	schedules := services.NewScheduleService(store, notifications, policy)

	if cfg.Jobs.NotificationCleanup {
		jobs.NewNotificationCleanup(store, locker, cfg.Jobs.Retention(), cfg.Jobs.CleanupTimeout()).Start(ctx)
	}

	gin.SetMode(cfg.Server.GinMode)
	router := routes.SetupRouter(routes.Dependencies{
		Auth:           middleware.NewAuth(cfg.JWT.Secret, cfg.JWT.TTL()),
		Hub:            hub,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,

		Users:         users,
		Buses:         services.NewBusService(store, schedules, notifications),
		Routes:        services.NewRouteService(store),
		Schedules:     schedules,
		Trips:         services.NewTripService(store),
		Maintenance:   services.NewMaintenanceService(store, notifications),
		Notifications: notifications,
		Locations:     services.NewLocationService(store, push),
		Reports:       services.NewReportService(store),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Server running.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed.")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed.")
	}
}

func openStore(cfg config.DatabaseConfig) (repository.Store, error) {
	if cfg.Driver == "memory" {
		logrus.Warn("Using the in-memory store; data is lost on restart.")
		return repository.NewMemoryStore(), nil
	}
	db, err := config.OpenDatabase(cfg, logger.NewGormLogger(200*time.Millisecond))
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}
