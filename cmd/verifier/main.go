// Package main
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/cfg"
	"github.com/commondao/governance-backend/db"
)

// The verifier replays the archived journal through a fresh engine and
// checks that the engine would have emitted exactly the same events. A
// divergence means the archive was tampered with or the configured
// parameters do not match the run that produced it.
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
	logger.Info("Start journal verifier...")

	dbConfig := db.Config{
		DbAdapter: db.Adapter(serviceCfg.StorageDriver),
		DbName:    serviceCfg.StorageDB,
		URL:       serviceCfg.StorageURI,
		MinConn:   serviceCfg.StorageMinConn,
		MaxConn:   serviceCfg.StorageMaxConn,
		FlushDB:   false, // never wipe the archive under verification
		Logger:    logger,
	}
	dbClient, err := db.NewClient(dbConfig)
	if err != nil {
		logger.Panic("cannot connect storage", zap.Error(err))
	}

	ctx := context.Background()
	divergences, replayed, err := verifyArchive(ctx, dbClient, serviceCfg, logger)
	if err != nil {
		logger.Error("verification aborted", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	if divergences > 0 {
		logger.Error("archive diverges from replay",
			zap.Int("divergences", divergences),
			zap.Int("events", replayed))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("archive verified", zap.Int("events", replayed))
	_ = logger.Sync()
}
