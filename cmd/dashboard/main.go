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

	"stock-dashboard/client"
	"stock-dashboard/config"
	"stock-dashboard/dashboard"
	"stock-dashboard/logger"
	"stock-dashboard/stockview"
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

	if err := cfg.ValidateDashboard(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Dashboard.Location)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	stocks, err := client.New(cfg.Dashboard.APIBaseURL, &http.Client{Timeout: cfg.Dashboard.Timeout})
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	h := dashboard.NewHandler(stocks, stockview.NewSequencer(cfg.Dashboard.ViewTTL, cfg.Dashboard.MaxViews), loc, log)
	router, err := dashboard.NewRouter(h, log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Dashboard.Addr, Handler: router}
	go func() {
		log.Info("dashboard listening",
			logger.Field{Key: "addr", Value: cfg.Dashboard.Addr},
			logger.Field{Key: "api", Value: cfg.Dashboard.APIBaseURL},
		)
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
