package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/deliveryrepo"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	configs := getConfigs(logger)

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(&deliveryrepo.DeliveryDTO{}, &courierrepo.CourierDTO{}); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		logger.Error("Failed to build application", "error", err)
		os.Exit(1)
	}

	recommendHandler, err := root.CreateRecommendCouriersQueryHandler()
	if err != nil {
		logger.Error("Failed to build recommendation handler", "error", err)
		os.Exit(1)
	}

	server := httpin.NewServer(
		root.CreateCreateDeliveryCommandHandler(),
		root.CreateClaimDeliveryCommandHandler(),
		root.CreateAdvanceDeliveryCommandHandler(),
		root.CreateCompleteDeliveryCommandHandler(),
		root.CreateCancelDeliveryCommandHandler(),
		root.CreateSweepExpiredCommandHandler(),
		root.CreateCreateCourierCommandHandler(),
		root.CreateReportCourierStatusCommandHandler(),
		root.CreateGetActiveDeliveriesQueryHandler(),
		root.CreateGetCourierBoardQueryHandler(),
		recommendHandler,
		root.ClaimTTL(),
	)

	jobManager := jobs.NewJobManager(
		root.CreateSweepExpiredCommandHandler(),
		root.ClaimTTL(),
		configs.ParseSweepCronSpec(),
		logger,
	)
	if err := jobManager.StartAll(); err != nil {
		logger.Error("Failed to start background jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true
	server.RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil {
			logger.Info("HTTP server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}
}

func getConfigs(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	return cmd.Config{
		HTTPPort:        envOrDefault("HTTP_PORT", "8080"),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          envOrDefault("DB_PORT", "5432"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBSslMode:       envOrDefault("DB_SSLMODE", "disable"),
		ClaimTTL:        os.Getenv("CLAIM_TTL"),
		SweepCronSpec:   os.Getenv("SWEEP_CRON_SPEC"),
		VATRate:         os.Getenv("VAT_RATE"),
		NightFee:        os.Getenv("NIGHT_FEE"),
		CourierShare:    os.Getenv("COURIER_SHARE"),
		ZoneTariffs:     os.Getenv("ZONE_TARIFFS"),
		RoutingBaseURL:  os.Getenv("ROUTING_BASE_URL"),
		NotifyEndpoint:  os.Getenv("NOTIFY_ENDPOINT"),
		OperatorContact: os.Getenv("OPERATOR_CONTACT"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
