// Package main
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/commondao/governance-backend/server"
)

// indexLoop drains the engine journal into storage and cache on a fixed
// interval. SyncJournal keeps its own checkpoint, a failed tick is retried
// on the next one.
func indexLoop(ctx context.Context, srv *server.Server, interval time.Duration) {
	srv.Logger.Info("Start journal indexer...", zap.Duration("interval", interval))
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := srv.SyncJournal(ctx); err != nil {
				srv.Logger.Warn("Indexer: cannot sync journal", zap.Error(err))
			}
		}
	}
}

// watchLoop finalizes ballots whose voting window has passed.
func watchLoop(ctx context.Context, srv *server.Server, interval time.Duration) {
	srv.Logger.Info("Start ballot watcher...", zap.Duration("interval", interval))
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := srv.FinalizeExpired(ctx); err != nil {
				srv.Logger.Warn("Watcher: some ballots could not be finalized", zap.Error(err))
			}
		}
	}
}
