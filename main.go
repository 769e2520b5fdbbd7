package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "meeting-portal-backend/cmd/api"
	"meeting-portal-backend/internal/app"
	calendarDelivery "meeting-portal-backend/internal/calendar/delivery"
	"meeting-portal-backend/pkg/config"
	"meeting-portal-backend/pkg/logging"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logCloser := logging.Setup(cfg)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	// Auto-migrate database schemas
	if err := app.Migrate(a.DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	a.StartNotifications(ctx)

	// Initialize runtime config for settings API
	api.InitRuntimeConfig(cfg.SyncEnabled)
	syncScheduler := a.NewScheduler(api.GetRuntimeAutoSyncEnabled)
	syncScheduler.Start(ctx)

	// Initialize HTTP handler
	handler := api.NewHandler(
		a.AuthUsecase,
		calendarDelivery.NewCalendarHandler(a.SyncUsecase, a.ConnectionUsecase, cfg.FrontendURL),
		calendarDelivery.NewMeetingHandler(a.MeetingUsecase),
	)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(ctx, ":"+cfg.Port); err != nil {
		log.Printf("Server error: %v", err)
	}

	syncScheduler.Stop()
	if err := a.Close(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
