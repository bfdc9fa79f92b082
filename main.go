package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isandoval/rbac-admin-be/internal/api"
	"github.com/isandoval/rbac-admin-be/internal/auth"
	"github.com/isandoval/rbac-admin-be/internal/config"
	"github.com/isandoval/rbac-admin-be/internal/database"
	"github.com/isandoval/rbac-admin-be/internal/logger"
	"github.com/isandoval/rbac-admin-be/internal/metrics"
	"github.com/isandoval/rbac-admin-be/internal/monitoring"
	"github.com/isandoval/rbac-admin-be/internal/notify"
	"github.com/isandoval/rbac-admin-be/internal/services"
	"github.com/isandoval/rbac-admin-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
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

	userStore := database.NewUserStore(db)
	auditStore := database.NewAuditStore(db)
	tokenStore := database.NewTokenStore(db)

	// In-memory fallback token store keeps the reset flow alive outside
	// production when the database file is unreachable.
	var fallbackTokens services.TokenStore
	if !cfg.IsProduction() {
		fallbackTokens = database.NewMemoryTokenStore()
	}

	// Set up WebSocket hub for the admin activity feed
	hub := websocket.NewHub()
	go hub.Run()

	// Notification channels for high-risk actions
	channels := []notify.Channel{notify.NewFeed(hub)}
	var email *notify.Email
	if cfg.SMTPHost != "" && cfg.AlertEmail != "" {
		email = notify.NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, cfg.AlertEmail)
		channels = append(channels, email)
	}
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, notify.NewSlack(cfg.SlackWebhookURL))
	}
	dispatcher := notify.NewDispatcher(channels...)

	var mailer services.ResetMailer = notify.LogMailer{}
	if email != nil {
		mailer = email
	}

	// Set up services
	auditService := services.NewAuditService(auditStore, dispatcher)
	userService := services.NewUserService(userStore, auditService, cfg.AdminRegistrationKey)
	roleService := services.NewRoleService(userStore, auditService)
	resetService := services.NewResetService(userStore, tokenStore, fallbackTokens, auditService, mailer, cfg.ResetBaseURL)

	// Background sweep of expired reset tokens
	sweeper := monitoring.NewTokenSweeper(resetService)
	sweeper.Run()

	metrics.Register()

	// Set up router
	router := api.NewRouter(api.RouterDeps{
		Hub:          hub,
		UserService:  userService,
		RoleService:  roleService,
		AuditService: auditService,
		ResetService: resetService,
		Production:   cfg.IsProduction(),
		AllowOrigin:  cfg.AllowedOrigin,
	})

	// Set up server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
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

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
