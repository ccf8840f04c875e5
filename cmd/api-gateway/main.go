package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/application"
	"rescue-coordination-system/internal/config"
	"rescue-coordination-system/internal/infrastructure/cache"
	"rescue-coordination-system/internal/infrastructure/mesh"
	"rescue-coordination-system/internal/infrastructure/repositories"
	"rescue-coordination-system/internal/infrastructure/storage"
	"rescue-coordination-system/internal/ports/api"
	"rescue-coordination-system/internal/ports/ws"
	"rescue-coordination-system/pkg/classifier"
	"rescue-coordination-system/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "rescue-coordination")
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		zapLogger.Fatal("Error connecting to database", zap.Error(err))
	}
	defer db.Close()

	if err := repositories.InitializeSchema(db); err != nil {
		zapLogger.Warn("Error initializing database schema", zap.Error(err))
	}

	deviceRepo := repositories.NewPostgresDeviceRepository(db)
	alertRepo := repositories.NewPostgresAlertRepository(db)
	campaignRepo := repositories.NewPostgresCampaignRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	readingCache := cache.NewRedisReadingCache(redisClient, cfg.Sensor.HistoryCapacity)

	campaignArchive, err := storage.NewMinioCampaignArchive(
		cfg.Archive.Endpoint, cfg.Archive.AccessKey, cfg.Archive.SecretKey,
		cfg.Archive.Bucket, cfg.Archive.UseSSL)
	if err != nil {
		zapLogger.Fatal("Error initializing campaign archive", zap.Error(err))
	}

	hub := ws.NewHub(zapLogger)
	threshold := classifier.NewThreshold(cfg.Sensor.CO2Threshold)

	deviceService := application.NewDeviceService(deviceRepo, hub, cfg.Sensor.BatteryLowLevel, zapLogger)
	alertService := application.NewAlertService(alertRepo, hub, zapLogger)
	campaignService := application.NewCampaignService(campaignRepo, alertService, campaignArchive, hub, zapLogger)
	userService := application.NewUserService(userRepo, zapLogger)
	statsService := application.NewStatsService(deviceRepo, alertRepo, campaignRepo, userRepo)
	ingestService := application.NewIngestService(deviceService, alertService, threshold,
		readingCache, hub, cfg.Sensor.BatteryLowLevel, zapLogger)
	presenceService := application.NewPresenceService(deviceRepo, deviceService,
		cfg.Presence.SweepInterval, cfg.Presence.OfflineTimeout, zapLogger)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go presenceService.Start(rootCtx)

	subscriber, err := mesh.NewSubscriber(cfg.MQTT, zapLogger)
	if err != nil {
		zapLogger.Fatal("Error connecting to MQTT broker", zap.Error(err))
	}
	defer subscriber.Close()

	if err := subscriber.Subscribe(rootCtx, ingestService.HandleMeshMessage); err != nil {
		zapLogger.Fatal("Error subscribing to mesh topics", zap.Error(err))
	}

	deviceHandler := api.NewDeviceHandler(deviceService, readingCache)
	alertHandler := api.NewAlertHandler(alertService)
	campaignHandler := api.NewCampaignHandler(campaignService, campaignArchive)
	userHandler := api.NewUserHandler(userService)
	statsHandler := api.NewStatsHandler(statsService)
	settingsHandler := api.NewSettingsHandler(threshold)
	dashboardWSHandler := ws.NewDashboardHandler(hub, zapLogger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-Id", "X-Actor-Name", "X-Actor-Role"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			deviceHandler.RegisterRoutes(r)
			alertHandler.RegisterRoutes(r)
			campaignHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
			statsHandler.RegisterRoutes(r)
			settingsHandler.RegisterRoutes(r)

			r.Get("/ws/dashboard", dashboardWSHandler.HandleConnection)
		})
	})

	zapLogger.Info("Starting server", zap.String("addr", cfg.HTTP.Addr))

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	zapLogger.Info("Shutting down server...")

	cancel()
	hub.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Error during server shutdown", zap.Error(err))
	}

	zapLogger.Info("Server gracefully stopped")
}
