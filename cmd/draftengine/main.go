package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft"
	"github.com/draftarena/engine/internal/draft/events"
	"github.com/draftarena/engine/internal/draft/store"
	"github.com/draftarena/engine/internal/gateway"
	"github.com/draftarena/engine/internal/mockdraft"
	"github.com/draftarena/engine/internal/pool"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	provider, err := pool.LoadFile(cfg.PoolFile)
	if err != nil {
		log.Fatal().Err(err).Str("pool_file", cfg.PoolFile).Msg("failed to load player pools")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go wsManager.Start(ctx)

	sinks := events.MultiSink{events.LogSink{}, wsManager}
	if cfg.NATSUrl != "" {
		nc, err := events.ConnectNATS(cfg.NATSUrl)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSUrl).Msg("failed to connect to NATS")
		}
		defer nc.Close()
		sinks = append(sinks, events.NewNATSSink(nc, "draft.events"))
	}

	var archive store.Store = store.Noop{}
	if cfg.DatabaseURL != "" {
		pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Postgres pool")
		}
		defer pgPool.Close()

		pg := store.NewPostgres(pgPool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure archive schema")
		}
		archive = pg
	}

	engine := draft.New(draft.Config{
		Pool:  provider,
		Sink:  sinks,
		Store: archive,
	})

	seed := cfg.MockDraftSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim, err := mockdraft.New(provider, sinks, rand.NewSource(seed))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mock draft simulator")
	}

	handler := gateway.NewHandler(engine, sim, wsManager)
	server := setupServer(cfg.Port, handler)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("draft engine listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.PrettyLog {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
