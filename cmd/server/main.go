package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finplan/internal/auth"
	"finplan/internal/config"
	"finplan/internal/database"
	"finplan/internal/handlers"
	"finplan/internal/repository"
	"finplan/internal/security"
	"finplan/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Services
	sessions := auth.NewSessions(cfg.TokenSecret, cfg.SessionTTL)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	authService := service.NewAuthService(userRepo, sessions, emailService, cfg.ResetTokenTTL)

	// Handlers
	limiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(sessions, limiter)
	authHandler := handlers.NewAuthHandler(authService, sessions)
	calendarHandler := handlers.NewCalendarHandler(eventRepo)
	goalHandler := handlers.NewGoalHandler(goalRepo)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo)

	mux := http.NewServeMux()

	// Auth routes. Login, register and the reset endpoints are rate limited
	// because they are the ones worth brute-forcing.
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/session", middleware.RequireAuth(authHandler.Session))
	mux.HandleFunc("DELETE /api/auth/session", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/reset", middleware.RateLimit(authHandler.RequestReset))
	mux.HandleFunc("POST /api/auth/reset/confirm", middleware.RateLimit(authHandler.ConfirmReset))

	// Calendar routes
	mux.HandleFunc("GET /api/calendar/events", middleware.RequireAuth(calendarHandler.List))
	mux.HandleFunc("POST /api/calendar/events", middleware.RequireAuth(calendarHandler.Create))
	mux.HandleFunc("PUT /api/calendar/events/{id}", middleware.RequireAuth(calendarHandler.Update))
	mux.HandleFunc("DELETE /api/calendar/events/{id}", middleware.RequireAuth(calendarHandler.Delete))

	// Goal routes
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goalHandler.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goalHandler.Create))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireAuth(goalHandler.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goalHandler.Delete))

	// Transaction, tag and statistics routes
	mux.HandleFunc("GET /api/transactions", middleware.RequireAuth(transactionHandler.List))
	mux.HandleFunc("POST /api/transactions", middleware.RequireAuth(transactionHandler.Create))
	mux.HandleFunc("PUT /api/transactions/{id}", middleware.RequireAuth(transactionHandler.Update))
	mux.HandleFunc("DELETE /api/transactions/{id}", middleware.RequireAuth(transactionHandler.Delete))
	mux.HandleFunc("GET /api/tags", middleware.RequireAuth(transactionHandler.ListTags))
	mux.HandleFunc("POST /api/tags", middleware.RequireAuth(transactionHandler.CreateTag))
	mux.HandleFunc("GET /api/statistics", middleware.RequireAuth(transactionHandler.Statistics))

	handler := handlers.Logging(handlers.CORS(cfg.CORSAllowOrigin, mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
