// main.go
//
// Entry point for the Connections server.
// Loads config, opens the results database, loads the puzzle catalog and
// serves the HTTP API until SIGINT/SIGTERM.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/assets"
	"github.com/robalobadob/connections/internal/config"
	"github.com/robalobadob/connections/internal/daily"
	"github.com/robalobadob/connections/internal/database"
	"github.com/robalobadob/connections/internal/httpserver"
	"github.com/robalobadob/connections/internal/puzzles"
	"github.com/robalobadob/connections/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	catalog, err := puzzles.Open(cfg.PuzzlesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzles")
	}

	srv := httpserver.New(store.NewMemoryStore(), daily.NewStore(db), catalog, httpserver.Options{
		DailySalt:      cfg.DailySalt,
		JWTSecret:      cfg.JWTSecret,
		JWTExpiry:      cfg.JWTExpiry,
		TrackCompleted: cfg.TrackCompleted,
		ShowStats:      cfg.ShowStats,
		ClientOrigin:   cfg.ClientOrigin,
		SessionTTL:     cfg.SessionTTL,
		IdleTTL:        cfg.IdleTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("addr", cfg.Addr()).Int("puzzles", catalog.Len()).Msg("starting connections server")
	if err := srv.Run(ctx, cfg.Addr()); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("bye")
}
