package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/api"
	"github.com/commondao/governance-backend/cache"
	"github.com/commondao/governance-backend/cfg"
	"github.com/commondao/governance-backend/db"
	"github.com/commondao/governance-backend/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		panic(err.Error())
	}

	serviceCfg, err := cfg.New()
	if err != nil {
		panic(err.Error())
	}

	logger, err := newLogger(serviceCfg)
	if err != nil {
		panic("cannot init logger")
	}
	logger.Info("Start governance API server...")

	defer func() {
		if err := recover(); err != nil {
			logger.Error("cannot recover")
		}
		if err := logger.Sync(); err != nil {
			logger.Error("cannot sync log")
		}
	}()

	if err := setupSentry(serviceCfg); err != nil {
		panic(err)
	}
	defer sentry.Flush(2 * time.Second)

	srvConfig := server.Config{
		StorageAdapter: db.Adapter(serviceCfg.StorageDriver),
		StorageURI:     serviceCfg.StorageURI,
		StorageDB:      serviceCfg.StorageDB,
		StorageMinConn: serviceCfg.StorageMinConn,
		StorageMaxConn: serviceCfg.StorageMaxConn,
		StorageIsFlush: serviceCfg.StorageIsFlush,

		CacheAdapter:     cache.Adapter(serviceCfg.CacheEngine),
		CacheURL:         serviceCfg.CacheURL,
		CacheDB:          serviceCfg.CacheDB,
		CachePassword:    serviceCfg.CachePassword,
		CacheIsFlush:     serviceCfg.CacheIsFlush,
		CacheExpiredTime: serviceCfg.CacheExpiredTime,
		CacheEventBuffer: serviceCfg.CacheEventBuffer,

		ChairmanAddress: serviceCfg.ChairmanAddress,
		ContractAddress: serviceCfg.ContractAddress,
		MinimumQuorum:   serviceCfg.MinimumQuorum,
		DebatingPeriod:  serviceCfg.DebatingPeriod,
		MinimumVotes:    serviceCfg.MinimumVotes,

		HttpRequestSecret: serviceCfg.HttpRequestSecret,

		DiscordToken:     serviceCfg.DiscordToken,
		DiscordChannelID: serviceCfg.DiscordChannelID,

		Metrics: nil,
		Logger:  logger,
	}

	// mongo and redis may still be coming up alongside us
	var srv *server.Server
	op := func() error {
		s, err := server.New(srvConfig)
		if err != nil {
			logger.Warn("cannot create server instance, retrying", zap.Error(err))
			return err
		}
		srv = s
		return nil
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewConstantBackOff(4*time.Second), 5)); err != nil {
		logger.Panic("cannot create server instance", zap.Error(err))
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	waitExit := make(chan bool)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			cancel()
			waitExit <- true
		}
	}()

	go indexLoop(ctx, srv, serviceCfg.IndexerInterval)
	go watchLoop(ctx, srv, serviceCfg.WatcherInterval)
	go func() {
		api.Start(srv, serviceCfg, srv.Metrics().Handler())
	}()

	<-waitExit
	logger.Info("Stopped")
}

func setupSentry(cfg cfg.GovernanceConfig) error {
	opts := sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.ServerMode,
	}
	if err := sentry.Init(opts); err != nil {
		return err
	}
	return nil
}
