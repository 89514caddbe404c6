package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/endowment-crm/internal/config"
	"github.com/localnerve/endowment-crm/internal/database"
	"github.com/localnerve/endowment-crm/internal/logging"
	"github.com/localnerve/endowment-crm/internal/server"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/rs/zerolog/log"

	_ "github.com/localnerve/endowment-crm/docs/api" // Swagger docs
)

// @title Endowment CRM API
// @version 1.0.0
// @description Relationship and deal pipeline service for an endowment investment team
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/endowment-crm
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	blobs, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize attachment storage")
	}

	// Authorizer is initialized on the first authenticated request
	app := server.New(server.Options{
		Config:    cfg,
		DB:        db,
		Blobs:     blobs,
		Validator: services.NewAuthorizerValidator(cfg),
		Metrics:   true,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageType).Msg("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	log.Info().Msg("Server stopped")
}
