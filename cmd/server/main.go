package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/FeiJiang1234/presencekit/modules/presence"
	"github.com/FeiJiang1234/presencekit/pkg/broker"
	"github.com/FeiJiang1234/presencekit/pkg/config"
	"github.com/FeiJiang1234/presencekit/pkg/httpserver"
	"github.com/FeiJiang1234/presencekit/pkg/logger"
)

type appConfig struct {
	Server httpserver.Config
	Broker broker.Config
	Log    logger.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithService("presencekit"))

	ctx := context.Background()

	b := broker.NewFromConfig(cfg.Broker, broker.WithLogger(log))
	svc := presence.NewService(b, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Mount("/presence", svc.Router())

	srv := httpserver.NewFromConfig(cfg.Server, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}
