/*
 *  Copyright 2021 CommonDAO
 *  This file is part of the governance-backend library.
 *
 *  The governance-backend library is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  The governance-backend library is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 *  GNU Lesser General Public License for more details.
 *
 *  You should have received a copy of the GNU Lesser General Public License
 *  along with the governance-backend library. If not, see <http://www.gnu.org/licenses/>.
 */

package server

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/cache"
	"github.com/commondao/governance-backend/db"
	"github.com/commondao/governance-backend/governance"
	"github.com/commondao/governance-backend/metrics"
	"github.com/commondao/governance-backend/notify"
	"github.com/commondao/governance-backend/utils"
)

type Config struct {
	StorageAdapter db.Adapter
	StorageURI     string
	StorageDB      string
	StorageMinConn int
	StorageMaxConn int
	StorageIsFlush bool

	CacheAdapter     cache.Adapter
	CacheURL         string
	CacheDB          int
	CachePassword    string
	CacheIsFlush     bool
	CacheExpiredTime time.Duration
	CacheEventBuffer int64

	ChairmanAddress string
	ContractAddress string
	MinimumQuorum   uint64
	DebatingPeriod  time.Duration
	MinimumVotes    uint64

	HttpRequestSecret string

	DiscordToken     string
	DiscordChannelID string

	Metrics *metrics.Provider
	Logger  *zap.Logger
}

// Storage is the slice of the db client the server needs. The full db.Client
// satisfies it.
type Storage interface {
	db.IProposal
	db.IParticipant
	db.IEvent
	db.IStats
}

// infoServer handles how ballot data is retrieved and stored without
// interacting with anything beyond its own clients
type infoServer struct {
	dbClient    Storage
	cacheClient cache.Client

	engine   *governance.Engine
	token    *governance.MemoryToken
	notifier notify.Notifier

	HttpRequestSecret string

	// nextSeq is the first journal seq the indexer has not archived yet.
	// The engine starts every run at seq zero, so this does too.
	nextSeq uint64

	logger *zap.Logger
}

// Server instance kind of a router, which receive request from client
// and control how we react those request
type Server struct {
	Logger *zap.Logger

	metrics *metrics.Provider

	infoServer
}

func New(cfg Config) (*Server, error) {
	cfg.Logger.Info("Create new server instance",
		zap.String("chairman", cfg.ChairmanAddress),
		zap.Uint64("minimumQuorum", cfg.MinimumQuorum),
		zap.Duration("debatingPeriod", cfg.DebatingPeriod))
	if !utils.IsValidAddress(cfg.ChairmanAddress) {
		return nil, errors.New("invalid chairman address")
	}
	if cfg.ContractAddress != "" && !utils.IsValidAddress(cfg.ContractAddress) {
		return nil, errors.New("invalid contract address")
	}

	token := governance.NewMemoryToken()
	engineCfg := governance.Config{
		Params: governance.Params{
			MinimumQuorum:  cfg.MinimumQuorum,
			DebatingPeriod: cfg.DebatingPeriod,
			MinimumVotes:   cfg.MinimumVotes,
		},
		Chairman: common.HexToAddress(cfg.ChairmanAddress),
		Token:    token,
		Logger:   cfg.Logger,
	}
	if cfg.ContractAddress != "" {
		engineCfg.SelfAddress = common.HexToAddress(cfg.ContractAddress)
	}
	engine, err := governance.New(engineCfg)
	if err != nil {
		return nil, err
	}

	dbConfig := db.Config{
		DbAdapter: cfg.StorageAdapter,
		DbName:    cfg.StorageDB,
		URL:       cfg.StorageURI,
		MinConn:   cfg.StorageMinConn,
		MaxConn:   cfg.StorageMaxConn,
		FlushDB:   cfg.StorageIsFlush,
		Logger:    cfg.Logger,
	}
	dbClient, err := db.NewClient(dbConfig)
	if err != nil {
		return nil, err
	}

	cacheClient, err := cache.New(cache.Config{
		Adapter:            cfg.CacheAdapter,
		URL:                cfg.CacheURL,
		DB:                 cfg.CacheDB,
		Password:           cfg.CachePassword,
		IsFlush:            cfg.CacheIsFlush,
		EventBuffer:        cfg.CacheEventBuffer,
		DefaultExpiredTime: cfg.CacheExpiredTime,
		Logger:             cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(notify.Config{
		Token:     cfg.DiscordToken,
		ChannelID: cfg.DiscordChannelID,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	provider := cfg.Metrics
	if provider == nil {
		provider, err = metrics.New("governance")
		if err != nil {
			return nil, err
		}
	}

	// The engine journal restarts at zero with every process, so a leftover
	// archive describes a different run. Warn instead of silently mixing the
	// two streams.
	if latest, err := dbClient.LatestSeq(context.Background()); err == nil && !cfg.StorageIsFlush {
		cfg.Logger.Warn("storage holds events from a previous run, set STORAGE_IS_FLUSH for a clean archive",
			zap.Uint64("latestSeq", latest))
	}

	infoServer := infoServer{
		dbClient:          dbClient,
		cacheClient:       cacheClient,
		engine:            engine,
		token:             token,
		notifier:          notifier,
		HttpRequestSecret: cfg.HttpRequestSecret,
		logger:            cfg.Logger,
	}

	return &Server{
		Logger:     cfg.Logger,
		metrics:    provider,
		infoServer: infoServer,
	}, nil
}

// Metrics exposes the provider so the HTTP layer can mount its handler.
func (s *Server) Metrics() *metrics.Provider {
	return s.metrics
}

// Close releases the notifier session. The db and cache clients hold no
// resources worth a shutdown hook beyond their own connection pools.
func (s *Server) Close() {
	if err := s.notifier.Close(); err != nil {
		s.Logger.Warn("cannot close notifier", zap.Error(err))
	}
}
