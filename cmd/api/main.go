package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/career-passport/internal/chain"
	"github.com/prohmpiriya/career-passport/internal/di"
	"github.com/prohmpiriya/career-passport/internal/publisher"
	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/config"
	"github.com/prohmpiriya/career-passport/pkg/kafka"
	"github.com/prohmpiriya/career-passport/pkg/logger"
	pkgredis "github.com/prohmpiriya/career-passport/pkg/redis"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "career-passport: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
		OutputPath:  cfg.Log.OutputPath,
	}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	log := logger.Get()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()
	metrics, err := telemetry.GetMetrics()
	if err != nil {
		log.Warn("metrics disabled", zap.Error(err))
	}

	store, err := repository.NewStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build %s store: %w", cfg.Store.Driver, err)
	}
	defer store.Close()
	log.Info("store ready", zap.String("driver", cfg.Store.Driver))

	containerCfg := &di.ContainerConfig{
		Config:  cfg,
		Store:   store,
		Logger:  log,
		Metrics: metrics,
	}

	if cfg.Redis.Enabled {
		redisCfg := pkgredis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.DialTimeout > 0 {
			redisCfg.DialTimeout = cfg.Redis.DialTimeout
		}
		client, err := pkgredis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("redis unavailable, using in-process snapshot cache", zap.Error(err))
		} else {
			defer client.Close()
			containerCfg.Cache = repository.NewRedisSnapshotCache(client)
		}
	}

	if cfg.Kafka.Enabled {
		kafkaCfg := kafka.DefaultConfig()
		kafkaCfg.Brokers = cfg.Kafka.Brokers
		kafkaCfg.Topic = cfg.Kafka.Topic
		if cfg.Kafka.ClientID != "" {
			kafkaCfg.ClientID = cfg.Kafka.ClientID
		}
		producer, err := kafka.NewProducer(ctx, kafkaCfg)
		if err != nil {
			log.Warn("kafka unavailable, domain events are dropped", zap.Error(err))
		} else {
			pub := publisher.NewKafkaPublisher(producer, cfg.Kafka.Topic)
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = pub.Close(closeCtx)
			}()
			containerCfg.Publisher = pub
		}
	}

	if cfg.Chain.Enabled() {
		client, err := chain.Dial(ctx, chain.Config{
			RPCURL:              cfg.Chain.RPCURL,
			ChainID:             cfg.Chain.ChainID,
			StampManagerAddress: cfg.Chain.StampManagerAddress,
			NFTContractAddress:  cfg.Chain.NFTContractAddress,
			DialTimeout:         10 * time.Second,
		})
		if err != nil {
			log.Warn("chain reads disabled, passport serves snapshots only", zap.Error(err))
		} else {
			defer client.Close()
			containerCfg.Chain = service.ChainReader(client)
		}
	}

	container := di.NewContainer(containerCfg)
	defer container.Close()

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      container.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
