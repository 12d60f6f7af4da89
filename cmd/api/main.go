package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"spot_picker/internal/adapters/geocoding"
	server "spot_picker/internal/adapters/http_server"
	"spot_picker/internal/adapters/imaging"
	"spot_picker/internal/adapters/observability"
	"spot_picker/internal/adapters/places"
	redisad "spot_picker/internal/adapters/redis"
	"spot_picker/internal/adapters/spots"
	"spot_picker/internal/app"
	"spot_picker/internal/domain"
	"spot_picker/internal/shared"
	mysqljournal "spot_picker/internal/storage/mysql"
	sqlitejournal "spot_picker/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// cache
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, place lookups will not be cached")
	}

	// journal
	journal, closeJournal, err := openJournal(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.JournalDriver).Msg("journal init failed")
	}
	defer closeJournal()

	// remote collaborators
	placesClient, err := places.New(cfg.PlacesBase, cfg.GoogleKey, cfg.PlacesRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	var geo domain.Geocoder
	if g, err := geocoding.New(cfg.GeocodeBase, cfg.GoogleKey, cfg.PlacesRPS); err != nil {
		log.Warn().Err(err).Msg("geocoding disabled, manual picks get an unknown address")
	} else {
		geo = g
	}
	spotsClient, err := spots.New(cfg.SpotsBase, cfg.SpotsRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize spots client")
	}

	// app
	resolver := app.NewPlaceResolver(placesClient, cache, cfg.CacheTTL(), cfg.PhotoWidth)
	address := app.NewAddressResolver(geo)
	var shrinker domain.ImageShrinker
	if s := imaging.NewShrinker(cfg.UploadMaxWidth); s != nil {
		shrinker = s
	}
	workflow := app.NewSubmissionWorkflow(spotsClient, journal, shrinker)
	sessions := app.NewSessions(func() *app.Controller {
		return app.NewController(resolver, address, workflow)
	}, cfg.SessionTTL())
	go sessions.Run(ctx, time.Minute)

	// http
	srv := server.New(log.Logger, 60*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Sessions: sessions,
		Places:   resolver,
		Spots:    spotsClient,
		Journal:  journal,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// openJournal picks the submission journal backend. The returned journal is nil
// for the "none" driver.
func openJournal(ctx context.Context, cfg shared.Config) (domain.SubmissionJournal, func(), error) {
	switch cfg.JournalDriver {
	case "mysql":
		j, err := mysqljournal.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("journal: mysql")
		return j, func() { _ = j.Close() }, nil
	case "sqlite":
		j, err := sqlitejournal.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("journal: sqlite")
		return j, func() { _ = j.Close() }, nil
	default:
		log.Info().Msg("journal disabled")
		return nil, func() {}, nil
	}
}
