package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pawspace/pawspace-be/internal/api"
	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/config"
	"github.com/pawspace/pawspace-be/internal/database"
	"github.com/pawspace/pawspace-be/internal/logger"
	"github.com/pawspace/pawspace-be/internal/monitoring"
	"github.com/pawspace/pawspace-be/internal/payments"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/pawspace/pawspace-be/internal/storage"
	"github.com/pawspace/pawspace-be/internal/websocket"
)

func main() {
	logger.Init()

	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded environment from .env")
	}

	// Load configuration. Missing JWT or Stripe secrets abort startup here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	auth.Init(cfg.JWTSecret)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the media store for listing images
	media, err := storage.NewMediaStore(cfg.MediaPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media store")
	}

	// Set up the payment provider client
	stripeClient := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.StripeRefreshURL, cfg.StripeReturnURL)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, eventService)
	listingService := services.NewListingService(db, eventService)
	forumService := services.NewForumService(db, eventService)
	favoriteService := services.NewFavoriteService(db)
	sellerService := services.NewSellerService(db, stripeClient, eventService)

	// Set up and run the background seller reconciliation sweep
	reconciler, err := monitoring.NewReconciler(sellerService, cfg.ReconcileSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ReconcileSchedule).Msg("Invalid reconcile schedule")
	}
	go reconciler.Run()

	statusService := monitoring.NewStatusService(cfg.MediaPath)

	rateLimiter := api.NewRateLimiter(api.DefaultRateLimiterConfig())

	// Set up router
	router := api.NewRouter(hub, userService, listingService, forumService,
		favoriteService, sellerService, eventService, stripeClient, media,
		statusService, rateLimiter, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reconciler.Stop()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
