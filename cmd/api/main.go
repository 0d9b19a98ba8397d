package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goclue/adapters/api"
	"goclue/adapters/cluster"
	"goclue/adapters/postgres"
	"goclue/app"
	"goclue/internal"
	"goclue/internal/config"
	"goclue/ports"
)

func main() {
	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	var repo ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("failed to initialize database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = postgres.NewRunRepository(db)
		logger.Info("run persistence enabled")
	} else {
		logger.Warn("DATABASE_URL not set, runs will not be persisted")
	}

	service := app.NewEvaluationService(cluster.NewRegistry(), repo, logger)
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewServer(service, repo, logger),
	}

	go func() {
		logger.Info("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed: %v", err)
	}
}
