package main

import (
	"context"
	"database/sql"
	"dedi-tracker/internal/config"
	"dedi-tracker/internal/constants"
	fxmodules "dedi-tracker/internal/fx"
	"dedi-tracker/internal/middleware"
	"dedi-tracker/internal/scheduler"
	"dedi-tracker/internal/server"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runWorkers),
		fx.Invoke(runServer),
	).Run()
}

// runWorkers starts the two background loops exactly once, owned by the
// composition root and stopped through context cancellation.
func runWorkers(
	lc fx.Lifecycle,
	refresher *scheduler.Refresher,
	daily *scheduler.DailySyncer,
	logger zerolog.Logger,
) {
	workerCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go refresher.Run(workerCtx)
			go daily.Run(workerCtx)
			logger.Info().Msg("background workers started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("stopping background workers")
			cancel()
			return nil
		},
	})
}

func runServer(
	lc fx.Lifecycle,
	apiServer *server.Server,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(c.Handler(apiServer.Routes()))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      handler,
		ReadTimeout:  constants.RequestTimeout,
		WriteTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
