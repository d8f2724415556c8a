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

// Package cfg
package cfg

import (
	"errors"
	"os"
	"strconv"
	"time"
)

const (
	ModeDev        = "dev"
	ModeProduction = "prod"
)

type GovernanceConfig struct {
	ServerMode        string
	Port              string
	HttpRequestSecret string

	LogLevel  string
	SentryDSN string

	CacheEngine      string
	CacheURL         string
	CacheDB          int
	CachePassword    string
	CacheIsFlush     bool
	CacheExpiredTime time.Duration
	CacheEventBuffer int64

	StorageDriver  string
	StorageURI     string
	StorageDB      string
	StorageMinConn int
	StorageMaxConn int
	StorageIsFlush bool

	ChairmanAddress string
	ContractAddress string
	MinimumQuorum   uint64
	DebatingPeriod  time.Duration
	MinimumVotes    uint64

	IndexerInterval time.Duration
	WatcherInterval time.Duration

	DiscordToken     string
	DiscordChannelID string
}

func New() (GovernanceConfig, error) {
	cacheDBStr := os.Getenv("CACHE_DB")
	cacheDB, err := strconv.Atoi(cacheDBStr)
	if err != nil {
		cacheDB = 0
	}

	cacheIsFlushStr := os.Getenv("CACHE_IS_FLUSH")
	cacheIsFlush, err := strconv.ParseBool(cacheIsFlushStr)
	if err != nil {
		cacheIsFlush = true
	}

	cacheExpiredTimeStr := os.Getenv("CACHE_EXPIRED_TIME")
	cacheExpiredTime, err := strconv.Atoi(cacheExpiredTimeStr)
	if err != nil {
		cacheExpiredTime = 12
	}

	cacheEventBufferStr := os.Getenv("CACHE_EVENT_BUFFER")
	cacheEventBuffer, err := strconv.ParseInt(cacheEventBufferStr, 10, 64)
	if err != nil {
		cacheEventBuffer = 100
	}

	storageMinConnStr := os.Getenv("STORAGE_MIN_CONN")
	storageMinConn, err := strconv.Atoi(storageMinConnStr)
	if err != nil {
		storageMinConn = 8
	}

	storageMaxConnStr := os.Getenv("STORAGE_MAX_CONN")
	storageMaxConn, err := strconv.Atoi(storageMaxConnStr)
	if err != nil {
		storageMaxConn = 32
	}

	storageIsFlushStr := os.Getenv("STORAGE_IS_FLUSH")
	storageIsFlush, err := strconv.ParseBool(storageIsFlushStr)
	if err != nil {
		storageIsFlush = false
	}

	chairmanAddress := os.Getenv("CHAIRMAN_ADDRESS")
	if chairmanAddress == "" {
		return GovernanceConfig{}, errors.New("missing chairman address in config")
	}

	minimumQuorumStr := os.Getenv("MINIMUM_QUORUM")
	minimumQuorum, err := strconv.ParseUint(minimumQuorumStr, 10, 64)
	if err != nil {
		minimumQuorum = 51
	}

	debatingPeriodStr := os.Getenv("DEBATING_PERIOD")
	debatingPeriod, err := time.ParseDuration(debatingPeriodStr)
	if err != nil {
		debatingPeriod = 1 * time.Hour
	}

	minimumVotesStr := os.Getenv("MINIMUM_VOTES")
	minimumVotes, err := strconv.ParseUint(minimumVotesStr, 10, 64)
	if err != nil {
		minimumVotes = 1
	}

	indexerIntervalStr := os.Getenv("INDEXER_INTERVAL")
	indexerInterval, err := time.ParseDuration(indexerIntervalStr)
	if err != nil {
		indexerInterval = 1 * time.Second
	}

	watcherIntervalStr := os.Getenv("WATCHER_INTERVAL")
	watcherInterval, err := time.ParseDuration(watcherIntervalStr)
	if err != nil {
		watcherInterval = 5 * time.Second
	}

	cfg := GovernanceConfig{
		ServerMode:        os.Getenv("SERVER_MODE"),
		Port:              os.Getenv("PORT"),
		HttpRequestSecret: os.Getenv("HTTP_REQUEST_SECRET"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),

		CacheEngine:      os.Getenv("CACHE_ENGINE"),
		CacheURL:         os.Getenv("CACHE_URI"),
		CacheDB:          cacheDB,
		CachePassword:    os.Getenv("CACHE_PASSWORD"),
		CacheIsFlush:     cacheIsFlush,
		CacheExpiredTime: time.Duration(cacheExpiredTime) * time.Hour,
		CacheEventBuffer: cacheEventBuffer,

		StorageDriver:  os.Getenv("STORAGE_DRIVER"),
		StorageURI:     os.Getenv("STORAGE_URI"),
		StorageDB:      os.Getenv("STORAGE_DB"),
		StorageMinConn: storageMinConn,
		StorageMaxConn: storageMaxConn,
		StorageIsFlush: storageIsFlush,

		ChairmanAddress: chairmanAddress,
		ContractAddress: os.Getenv("CONTRACT_ADDRESS"),
		MinimumQuorum:   minimumQuorum,
		DebatingPeriod:  debatingPeriod,
		MinimumVotes:    minimumVotes,

		IndexerInterval: indexerInterval,
		WatcherInterval: watcherInterval,

		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
	}

	return cfg, nil
}
