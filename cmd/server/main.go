package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"prediction-form/internal/api"
	"prediction-form/internal/config"
	"prediction-form/internal/logging"
	"prediction-form/internal/predict"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		logrus.Fatalf("environment overrides: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		logrus.Fatalf("configure logging: %v", err)
	}
	defer logFile.Close()

	client, err := predict.NewClient(predict.Config{Endpoint: cfg.Endpoint, Timeout: cfg.Timeout})
	if err != nil {
		logrus.Fatalf("prediction client: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"endpoint": client.Endpoint(),
		"timeout":  cfg.Timeout,
	}).Info("prediction endpoint configured")

	server, err := api.NewServer(api.Config{
		Predictor:      client,
		Endpoint:       client.Endpoint(),
		Sample:         cfg.Sample,
		Labels:         cfg.Labels,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxSessions:    cfg.Server.MaxSessions,
		SessionTTL:     cfg.Server.SessionTTL,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer server.Close()

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("starting prediction form on :%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server exited: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("forced shutdown")
	}
}
