package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"stock-dashboard/cache"
	"stock-dashboard/config"
	"stock-dashboard/database"
	"stock-dashboard/ingest"
	"stock-dashboard/logger"
)

func main() {
	once := flag.Bool("once", false, "run a single load even when INGEST_CRON is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.ValidateIngest(); err != nil {
		log.Error(err)
		os.Exit(1)
	}

	tickers, err := ingest.LoadTickers(cfg.Ingest.TickersFile)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg.DB, cfg.App.Environment)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		log.Error(err)
		os.Exit(1)
	}

	// the API's cache is dropped after each load when Redis is reachable
	var c cache.Cache
	if rdb, err := config.InitRedis(ctx, cfg.Redis); err != nil {
		log.Warn("redis unavailable, API cache will expire on its own", logger.Field{Key: "error", Value: err.Error()})
	} else {
		defer rdb.Close()
		c = cache.NewRedisCache(rdb)
	}

	source := ingest.NewYahooSource(cfg.Ingest.YahooBaseURL, cfg.Ingest.Period, cfg.Ingest.Interval)
	loader := ingest.NewLoader(source, database.NewStockWriter(db, cfg.Ingest.BatchSize), c, cfg.Ingest.Workers, log)
	log.Info("ingest configured",
		logger.Field{Key: "source", Value: source.String()},
		logger.Field{Key: "tickers", Value: len(tickers)},
	)

	run := func(ctx context.Context) {
		if _, err := loader.Run(ctx, tickers); err != nil {
			log.Error(err)
		}
	}

	if cfg.Ingest.Cron == "" || *once {
		if _, err := loader.Run(ctx, tickers); err != nil {
			log.Error(err)
			os.Exit(1)
		}
		return
	}

	if err := ingest.Schedule(ctx, cfg.Ingest.Cron, log, run); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
