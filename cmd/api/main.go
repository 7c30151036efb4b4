package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jhasumit/busline/internal/http/handlers"
	mw "github.com/jhasumit/busline/internal/http/middleware"
	"github.com/jhasumit/busline/internal/platform/mailer"
	"github.com/jhasumit/busline/internal/repo/postgres"
	"github.com/jhasumit/busline/internal/repo/redisstore"
	"github.com/jhasumit/busline/internal/service"
	"github.com/jhasumit/busline/pkg/config"
	"github.com/jhasumit/busline/pkg/database"
	"github.com/jhasumit/busline/pkg/events"
	"github.com/jhasumit/busline/pkg/logger"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := redisstore.Connect(cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	customerRepo := postgres.NewCustomerRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	otpStore := redisstore.NewOTPStore(redisClient)

	// Services
	sessionService := service.NewSessionService(sessionRepo, cfg.Auth.SessionTTL)
	authService := service.NewAuthService(customerRepo, sessionService, otpStore, newMailer(cfg), eventBus, cfg)
	catalogService := service.NewCatalogService(catalogRepo)
	reservationService := service.NewReservationService(bookingRepo, catalogRepo, eventBus)
	paymentService := service.NewPaymentService(paymentRepo, eventBus)

	h := handlers.New(authService, sessionService, catalogService, reservationService, paymentService)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/user/signup", h.Signup)
	r.Post("/user/verify", h.Verify)
	r.Post("/user/login", h.Login)

	r.Get("/cities", h.Cities)
	r.Get("/buses", h.Buses)
	r.Get("/routes", h.Routes)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(sessionService))
		r.Post("/user/logout", h.Logout)
		r.Get("/bookings", h.ListBookings)
		r.Post("/bookings", h.CreateBooking)
		r.Post("/payments", h.RecordPayment)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting busline API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func newMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
	)
}
