package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/podserver/console/internal/console"
	"github.com/podserver/console/internal/core/service"
	"github.com/podserver/console/internal/infrastructure/db/mongo"
	"github.com/podserver/console/internal/infrastructure/db/redis"
	"github.com/podserver/console/internal/infrastructure/feed"
	"github.com/podserver/console/internal/infrastructure/health"
	"github.com/podserver/console/internal/infrastructure/security"
	"github.com/podserver/console/internal/metrics"
	"github.com/podserver/console/internal/pkg/config"
	"github.com/podserver/console/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	command := ""
	if len(os.Args) > 1 {
		command = strings.Join(os.Args[1:min(len(os.Args), 3)], " ")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Command: command,
	})

	// The first SIGINT/SIGTERM cancels ctx, which aborts the pending prompt
	// or storage call. Once it fires, default handling is restored so a
	// second signal terminates the process outright.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	prompt := console.NewTerminalPrompter(os.Stdin, os.Stdout)

	if !console.NeedsBackend(os.Args) {
		return console.NewApp(os.Stdout, prompt, nil, nil, log).Run(ctx, os.Args)
	}

	// --- Storage ---
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// --- Dependencies ---
	episodes := mongo.NewEpisodeRepository(db)
	accounts := service.NewAccountService(
		mongo.NewAccountRepository(db),
		mongo.NewDependentStores(db),
		mongo.NewTxManager(client),
		security.NewBcryptDigest(cfg.BcryptCost),
		security.UUIDKeys{},
		log,
	)
	podcasts := service.NewPodcastService(
		mongo.NewPodcastRepository(db),
		feed.NewIngester(episodes, cfg.Feed.Timeout, cfg.Feed.UserAgent, log),
		redis.NewDownloadScheduler(rdb, episodes, cfg.Redis.QueueKey, cfg.Redis.DedupTTL, log),
		log,
	)

	checker := health.NewChecker(3*time.Second, health.MongoProbe(db), health.RedisProbe(rdb))

	code := console.NewApp(os.Stdout, prompt, accounts, podcasts, log).
		WithHealth(checker).
		Run(ctx, os.Args)

	pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		log.Warn().Err(err).Msg("failed to push metrics")
	}
	return code
}
