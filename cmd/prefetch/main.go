package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"spot_picker/internal/adapters/observability"
	"spot_picker/internal/adapters/places"
	redisad "spot_picker/internal/adapters/redis"
	"spot_picker/internal/app"
	"spot_picker/internal/shared"
)

// prefetch warms the place cache. Place ids come from -file (one per line, # comments)
// and from the remaining arguments.
func main() {
	file := flag.String("file", "", "file with one place id per line")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ids := flag.Args()
	if *file != "" {
		fromFile, err := readIDs(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("read ids failed")
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) == 0 {
		log.Fatal().Msg("no place ids given")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	client, err := places.New(cfg.PlacesBase, cfg.GoogleKey, cfg.PlacesRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	resolver := app.NewPlaceResolver(client, cache, cfg.CacheTTL(), cfg.PhotoWidth)

	log.Info().Int("ids", len(ids)).Int("workers", cfg.PrefetchWorkers).Msg("prefetch starting")
	start := time.Now()
	n, err := resolver.Prefetch(ctx, ids, cfg.PrefetchWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("prefetch aborted")
	}
	log.Info().Int("resolved", n).Int("failed", len(ids)-n).Dur("took", time.Since(start)).Msg("prefetch completed")
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, sc.Err()
}
