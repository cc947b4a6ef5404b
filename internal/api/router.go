package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pawspace/pawspace-be/internal/api/handlers"
	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/metrics"
	"github.com/pawspace/pawspace-be/internal/monitoring"
	"github.com/pawspace/pawspace-be/internal/payments"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/pawspace/pawspace-be/internal/storage"
	"github.com/pawspace/pawspace-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	listingService services.ListingServiceProvider,
	forumService services.ForumServiceProvider,
	favoriteService services.FavoriteServiceProvider,
	sellerService services.SellerServiceProvider,
	eventService services.EventServiceProvider,
	webhookVerifier payments.WebhookVerifier,
	media *storage.MediaStore,
	statusService *monitoring.StatusService,
	rateLimiter *RateLimiter,
	allowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	listingHandler := handlers.NewListingHandler(listingService, media)
	forumHandler := handlers.NewForumHandler(forumService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	sellerHandler := handlers.NewSellerHandler(sellerService)
	webhookHandler := handlers.NewWebhookHandler(webhookVerifier, sellerService)
	eventHandler := handlers.NewEventHandler(eventService)
	statusHandler := handlers.NewStatusHandler(statusService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Payment provider webhook; raw body, signature-verified, never behind JWT.
	r.Post("/webhook", webhookHandler.Handle)

	// Prometheus metrics
	r.Handle("/metrics", metrics.Handler())

	// Uploaded listing images
	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(media.Dir())))
	r.Get("/media/*", fileServer.ServeHTTP)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket activity stream
		r.Get("/ws", wsHandler.Serve)

		r.Get("/status", statusHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Use(rateLimiter.AuthMiddleware)
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware())
				r.Get("/me", userHandler.GetMe)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", userHandler.Get)
			r.Get("/{id}/listings", listingHandler.GetForSeller)
			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware())
				r.Put("/{id}", userHandler.Update)
			})
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", listingHandler.Search)
			r.Get("/{id}", listingHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware())
				r.Use(rateLimiter.WriteMiddleware)
				r.Post("/", listingHandler.Create)
				r.Post("/image", listingHandler.UploadImage)
			})
		})

		r.Route("/forum/posts", func(r chi.Router) {
			r.Get("/", forumHandler.GetPosts)
			r.Get("/{id}", forumHandler.GetPost)
			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware())
				r.Use(rateLimiter.WriteMiddleware)
				r.Post("/", forumHandler.CreatePost)
				r.Post("/{id}/comments", forumHandler.AddComment)
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Get("/", favoriteHandler.List)
			r.Get("/{listingId}", favoriteHandler.Check)
			r.Post("/{listingId}", favoriteHandler.Add)
			r.Delete("/{listingId}", favoriteHandler.Remove)
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Use(rateLimiter.WriteMiddleware)
			r.Post("/onboarding-link", sellerHandler.CreateOnboardingLink)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
