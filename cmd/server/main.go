// Command server is the bootstrap entrypoint: it loads configuration,
// connects to Postgres (applying schema), and serves the Request API,
// the WebSocket upgrade endpoint, and a static-asset fallback.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roomrelay/server/internal/api"
	"github.com/roomrelay/server/internal/auth"
	"github.com/roomrelay/server/internal/config"
	"github.com/roomrelay/server/internal/router"
	"github.com/roomrelay/server/internal/store"
	"github.com/roomrelay/server/internal/store/postgres"
	"github.com/roomrelay/server/internal/wsupgrade"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config: failed to load")
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres: failed to connect")
	}
	defer db.Close()

	stores := &store.Stores{Users: db.Users(), Rooms: db.Rooms(), Messages: db.Messages()}

	tokens := auth.NewEncoder(cfg.JWTSecretKey)
	rt := router.New()

	httpAPI := api.New(stores, tokens, logger)
	upgradeHandler := wsupgrade.New(tokens, rt, stores, logger)

	mux := httpAPI.Router()
	mux.Handle("/ws", upgradeHandler).Methods(http.MethodGet)
	mux.PathPrefix("/").Handler(http.FileServer(http.Dir("./assets")))

	logger.Info().Str("addr", cfg.WSUrl).Msg("listening")
	if err := http.ListenAndServe(cfg.WSUrl, mux); err != nil {
		logger.Fatal().Err(err).Msg("server: listener failed")
	}
}
