package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"classBook/application"
	"classBook/config"
	"classBook/logger"
)

func main() {
	logr := logger.GetInstance()

	cfg, err := config.Load()
	if err != nil {
		logr.Fatalf("config load failed: %v", err)
	}

	if err := logr.Initialize(cfg.LogDir, cfg.LogLevel); err != nil {
		logr.Fatalf("logger initialization failed: %v", err)
	}

	logr.Infof("Application starting. LogLevel=%s", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := application.NewApplication()
	if err := app.Configure(ctx, cfg, logr); err != nil {
		logr.Fatalf("application configuration failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logr.Errorf("close failed: %v", err)
		}
	}()

	app.Run(ctx)

	logr.Info("Application stopped")
}
