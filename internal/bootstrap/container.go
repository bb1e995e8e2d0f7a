package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/emotionlab/server/internal/config"
	"github.com/emotionlab/server/internal/infra/blob"
	"github.com/emotionlab/server/internal/infra/cache"
	"github.com/emotionlab/server/internal/infra/db"
	"github.com/emotionlab/server/internal/infra/httpclient"
	"github.com/emotionlab/server/internal/infra/llm"
	"github.com/emotionlab/server/internal/infra/logger"
	mq "github.com/emotionlab/server/internal/infra/queue"
	"github.com/emotionlab/server/internal/modules/handler"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/emotionlab/server/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildContainer registers every dependency. Optional backends (redis, rabbitmq, s3, the
// llm provider and the profile service) resolve to nil when disabled, and the services
// degrade accordingly.
func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg, log)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				log.Warn("register gorm tracing", zap.Error(err))
			}
		}

		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(
				&model.Session{},
				&model.Round{},
				&model.Story{},
				&model.RegulationScript{},
				&model.GenerationLog{},
			); err != nil {
				return nil, err
			}
		}

		// ensure the static catalog exists
		if err := EnsureDefaultCatalog(context.Background(), repo.NewCatalogRepo(d), log); err != nil {
			return nil, err
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.Redis.Enabled {
			return nil, nil
		}
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				do.MustInvoke[*zap.Logger](i).Warn("register redis tracing", zap.Error(err))
			}
		}
		return rdb, nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ThrottleFunc, error) {
		rdb := do.MustInvoke[*redis.Client](i)
		if rdb == nil {
			return nil, nil
		}
		return func(ctx context.Context, key string, ttl time.Duration) (bool, error) {
			return cache.Throttle(ctx, rdb, key, ttl)
		}, nil
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)

		dialFn := func() (*amqp.Connection, error) {
			// Check if TLS is enabled via config or URL protocol
			useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")

			if useTLS {
				tlsConfig := &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
				// Convert amqp:// to amqps:// if needed
				url := cfg.RabbitMQ.URL
				if strings.HasPrefix(url, "amqp://") {
					url = strings.Replace(url, "amqp://", "amqps://", 1)
				}
				return amqp.DialTLS(url, tlsConfig)
			}

			return amqp.Dial(cfg.RabbitMQ.URL)
		}

		return dialFn, nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.RabbitMQ.Enabled {
			return nil, nil
		}
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return mq.NewPublisher(conn, log, cfg, dialFn)
	})
	do.Provide(inj, func(i *do.Injector) (service.Publisher, error) {
		if p := do.MustInvoke[*mq.Publisher](i); p != nil {
			return p, nil
		}
		return nil, nil
	})

	// Observer queue consumer
	do.Provide(inj, func(i *do.Injector) (*mq.Consumer, error) {
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		cfg := do.MustInvoke[*config.Config](i)
		return mq.NewConsumer(conn,
			cfg.RabbitMQ.ExchangeName.Rounds,
			cfg.RabbitMQ.RoutingKey.RoundCompleted,
			cfg.RabbitMQ.ObserverQueue,
			cfg.RabbitMQ.Prefetch,
			do.MustInvoke[*zap.Logger](i),
			cfg,
		)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		s3, err := blob.NewS3(context.Background(), cfg)
		if errors.Is(err, blob.ErrDisabled) {
			return nil, nil
		}
		return s3, err
	})
	do.Provide(inj, func(i *do.Injector) (service.Archiver, error) {
		if s3 := do.MustInvoke[*blob.S3Deps](i); s3 != nil {
			return s3, nil
		}
		return nil, nil
	})

	// Profile HTTP Client
	do.Provide(inj, func(i *do.Injector) (service.ProfileLookup, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Profile.BaseURL == "" {
			return nil, nil
		}
		return httpclient.NewProfileClient(cfg, do.MustInvoke[*zap.Logger](i)), nil
	})

	// LLM provider
	do.Provide(inj, func(i *do.Injector) (llm.Provider, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.LLM.APIKey == "" {
			do.MustInvoke[*zap.Logger](i).Warn("no llm api key configured, serving static content only")
			return nil, nil
		}
		return llm.New(cfg)
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.SessionRepo, error) {
		return repo.NewSessionRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.RoundRepo, error) {
		return repo.NewRoundRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.CatalogRepo, error) {
		return repo.NewCatalogRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.GenerationLogRepo, error) {
		return repo.NewGenerationLogRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AuditRecorder, error) {
		return service.NewAuditRecorder(
			do.MustInvoke[repo.GenerationLogRepo](i),
			do.MustInvoke[service.Archiver](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SafetyAlerter, error) {
		return service.NewSafetyAlerter(
			do.MustInvoke[service.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.GenerationService, error) {
		return service.NewGenerationService(service.GenerationDeps{
			Provider: do.MustInvoke[llm.Provider](i),
			Sessions: do.MustInvoke[repo.SessionRepo](i),
			Rounds:   do.MustInvoke[repo.RoundRepo](i),
			Profiles: do.MustInvoke[service.ProfileLookup](i),
			Audit:    do.MustInvoke[service.AuditRecorder](i),
			Alerts:   do.MustInvoke[service.SafetyAlerter](i),
			Log:      do.MustInvoke[*zap.Logger](i),
		}), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ObserverService, error) {
		return service.NewObserverService(
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[repo.RoundRepo](i),
			do.MustInvoke[repo.CatalogRepo](i),
			do.MustInvoke[service.GenerationService](i),
			do.MustInvoke[service.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SessionService, error) {
		return service.NewSessionService(
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[repo.RoundRepo](i),
			do.MustInvoke[repo.CatalogRepo](i),
			do.MustInvoke[service.ProfileLookup](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RoundService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewRoundService(service.RoundDeps{
			Sessions: do.MustInvoke[repo.SessionRepo](i),
			Rounds:   do.MustInvoke[repo.RoundRepo](i),
			Catalog:  do.MustInvoke[repo.CatalogRepo](i),
			Gen:      do.MustInvoke[service.GenerationService](i),
			Observer: do.MustInvoke[service.ObserverService](i),
			Throttle: do.MustInvoke[service.ThrottleFunc](i),
			Debounce: cfg.Polling.DebounceWindow,
			Log:      do.MustInvoke[*zap.Logger](i),
		}), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.CatalogService, error) {
		return service.NewCatalogService(do.MustInvoke[repo.CatalogRepo](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.SessionHandler, error) {
		return handler.NewSessionHandler(do.MustInvoke[service.SessionService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.RoundHandler, error) {
		return handler.NewRoundHandler(do.MustInvoke[service.RoundService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.GenerationHandler, error) {
		return handler.NewGenerationHandler(do.MustInvoke[service.GenerationService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.CatalogHandler, error) {
		return handler.NewCatalogHandler(do.MustInvoke[service.CatalogService](i)), nil
	})

	return inj
}
