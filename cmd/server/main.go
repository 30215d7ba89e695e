package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/certwatch/certwatch-api/internal/config"
	"github.com/certwatch/certwatch-api/internal/handlers"
	"github.com/certwatch/certwatch-api/internal/middleware"
	"github.com/certwatch/certwatch-api/internal/migration"
	"github.com/certwatch/certwatch-api/internal/notification"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/certwatch/certwatch-api/internal/routes"
	"github.com/certwatch/certwatch-api/internal/scheduler"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config     *config.Config
	db         *sql.DB
	logger     zerolog.Logger
	dispatcher *notification.Dispatcher
	auditRepo  repository.AuditRepository
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	gooseAdapter := migration.NewGooseAdapter(logger)
	goose.SetLogger(gooseAdapter)

	// Load configuration.
	cfg := config.Load()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Invalid timezone")
	}

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Repositories.
	certRepo := repository.NewCertificationRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Mail gateway for expiry notifications.
	mailer, err := notification.NewSMTPMailer(cfg.Email)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure mailer")
	}

	// Notification engine.
	oracle := notification.NewOracle(auditRepo, loc)
	composer := notification.NewComposer(cfg.PublicBaseURL)
	dispatcher := notification.NewDispatcher(certRepo, recipientRepo, auditRepo, oracle, composer, mailer, cfg.Email.Cc, loc, logger)

	app := &application{
		config:     cfg,
		db:         db,
		logger:     logger,
		dispatcher: dispatcher,
		auditRepo:  auditRepo,
	}

	// Start the daily scheduler.
	sched := scheduler.New(dispatcher, loc, cfg.Scheduler.TriggerHour, cfg.Scheduler.PollInterval, cfg.Scheduler.RunTimeout, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(certRepo, recipientRepo, logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization", "X-File-Name"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, sched, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(certRepo repository.CertificationRepository, recipientRepo repository.RecipientRepository, logger zerolog.Logger) http.Handler {
	authHandler := handlers.NewAuthHandler(app.db, app.config, logger)
	certHandler := handlers.NewCertificationHandler(certRepo, logger)
	recipientHandler := handlers.NewRecipientHandler(recipientRepo, app.config.Email.DomainSuffix, logger)
	notificationHandler := handlers.NewNotificationHandler(app.dispatcher, app.auditRepo, logger)
	importHandler := handlers.NewImportHandler(certRepo, logger)

	return routes.NewRouter(authHandler, certHandler, recipientHandler, notificationHandler, importHandler)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, sched *scheduler.Scheduler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	// Stop the scheduler, draining any in-flight notification run.
	logger.Info().Msg("Stopping scheduler...")
	sched.Stop()
	logger.Info().Msg("Scheduler stopped.")
}
