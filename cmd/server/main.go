package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emotionlab/server/internal/bootstrap"
	"github.com/emotionlab/server/internal/config"
	"github.com/emotionlab/server/internal/infra/cache"
	mq "github.com/emotionlab/server/internal/infra/queue"
	"github.com/emotionlab/server/internal/middleware"
	"github.com/emotionlab/server/internal/modules/handler"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/emotionlab/server/internal/router"
	"github.com/emotionlab/server/internal/telemetry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

//	@title			Emotion Lab API
//	@version		1.0
//	@description	Session, round and content generation API for the Emotion Lab practice app.

//	@host		localhost:8029
//	@BasePath	/api/v1

func main() {
	inj := bootstrap.BuildContainer()
	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	// tracing must be in place before the db provider registers its plugin
	if tp, err := telemetry.SetupTracing(cfg); err != nil {
		log.Warn("setup tracing", zap.Error(err))
	} else if tp != nil {
		log.Info("tracing enabled", zap.String("endpoint", cfg.Telemetry.OtlpEndpoint))
	}
	if mp, err := telemetry.SetupMetrics(cfg); err != nil {
		log.Warn("setup metrics", zap.Error(err))
	} else if mp != nil {
		log.Info("metrics enabled", zap.String("endpoint", cfg.Telemetry.OtlpEndpoint))
	}

	handler.RegisterValidators()

	throttle := do.MustInvoke[service.ThrottleFunc](inj)
	deps := router.RouterDeps{
		Config:            cfg,
		Log:               log,
		SessionHandler:    do.MustInvoke[*handler.SessionHandler](inj),
		RoundHandler:      do.MustInvoke[*handler.RoundHandler](inj),
		GenerationHandler: do.MustInvoke[*handler.GenerationHandler](inj),
		CatalogHandler:    do.MustInvoke[*handler.CatalogHandler](inj),
	}
	if throttle != nil {
		deps.PollThrottle = middleware.ThrottleFunc(throttle)
	}
	engine := router.NewRouter(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observer := do.MustInvoke[service.ObserverService](inj)
	consumerDone := make(chan struct{})
	if consumer := do.MustInvoke[*mq.Consumer](inj); consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := observer.Consume(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("observer consumer stopped", zap.Error(err))
			}
		}()
		log.Info("observer consumer started", zap.String("queue", cfg.RabbitMQ.ObserverQueue))
	} else {
		close(consumerDone)
	}

	srv := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	<-consumerDone

	// background work started by requests: story preparation, observer runs, audit
	// writes and safety alerts
	do.MustInvoke[service.RoundService](inj).Wait()
	observer.Wait()
	do.MustInvoke[service.SafetyAlerter](inj).Wait()
	do.MustInvoke[service.AuditRecorder](inj).Wait()

	closeBackends(inj, log)

	if err := telemetry.ShutdownMetrics(shutdownCtx); err != nil {
		log.Warn("shutdown metrics", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown tracing", zap.Error(err))
	}
	log.Info("server stopped")
}

func closeBackends(inj *do.Injector, log *zap.Logger) {
	if c := do.MustInvoke[*mq.Consumer](inj); c != nil {
		_ = c.Close()
	}
	if p := do.MustInvoke[*mq.Publisher](inj); p != nil {
		_ = p.Close()
	}
	if conn := do.MustInvoke[*amqp.Connection](inj); conn != nil {
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			log.Warn("close rabbitmq", zap.Error(err))
		}
	}
	if rdb := do.MustInvoke[*redis.Client](inj); rdb != nil {
		cache.Close(rdb)
	}
}
