package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stock-dashboard/cache"
	"stock-dashboard/config"
	"stock-dashboard/database"
	"stock-dashboard/handlers"
	"stock-dashboard/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.ValidateAPI(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
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

	var c cache.Cache
	rdb, err := config.InitRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-process cache", logger.Field{Key: "error", Value: err.Error()})
		c = cache.NewMemory()
	} else {
		defer rdb.Close()
		c = cache.NewRedisCache(rdb)
	}

	router := handlers.NewRouter(
		handlers.NewStocksHandler(database.NewStockStore(db), c, cfg.Redis.CacheTTL, log),
		handlers.NewAuthHandler(database.NewUserStore(db), c, cfg.JWT, log),
		cfg.JWT.Secret,
		log,
	)

	srv := &http.Server{Addr: cfg.App.Addr, Handler: router}
	go func() {
		log.Info("stocks api listening", logger.Field{Key: "addr", Value: cfg.App.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err)
	}
}
