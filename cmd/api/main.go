package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"checkin-api/internal/config"
	"checkin-api/internal/handler"
	"checkin-api/internal/logging"
	"checkin-api/internal/repository"
	"checkin-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logging.Init(logging.Config{Level: config.LogLevel, Format: config.LogFormat})

	// Store connection is established on the first request
	store, err := repository.Open(config.StoreURI, config.DBName, config.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open store")
	}

	// Initialize layers
	captureService := service.NewCaptureService(store)
	captureHandler := handler.NewCaptureHandler(captureService)

	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter(captureHandler)

	srv := &http.Server{
		Addr:              config.ServerAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("database", config.DBName).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store disconnect")
	}
	log.Info().Msg("server stopped")
}
