// Package server
package server

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/api"
	"github.com/commondao/governance-backend/types"
	"github.com/commondao/governance-backend/utils"
)

func (s *Server) Ping(c echo.Context) error {
	return api.OK.Build(c)
}

func (s *Server) ServerStatus(c echo.Context) error {
	ctx := context.Background()
	status, err := s.cacheClient.ServerStatus(ctx)
	if err != nil {
		status = &types.ServerStatus{
			Status:        "online",
			EngineAddress: s.engine.Address().Hex(),
		}
	}
	return api.OK.SetData(status).Build(c)
}

func (s *Server) UpdateServerStatus(c echo.Context) error {
	ctx := context.Background()
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var status types.ServerStatus
	if err := c.Bind(&status); err != nil {
		return api.Invalid.Build(c)
	}
	if status.EngineAddress == "" {
		status.EngineAddress = s.engine.Address().Hex()
	}
	if err := s.cacheClient.UpdateServerStatus(ctx, &status); err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.Build(c)
}

// Stats serves the dashboard snapshot, freshest source first.
func (s *Server) Stats(c echo.Context) error {
	ctx := context.Background()
	snapshot, err := s.cacheClient.Snapshot(ctx)
	if err == nil {
		return api.OK.SetData(snapshot).Build(c)
	}
	s.logger.Debug("cannot get snapshot from cache", zap.Error(err))

	if snapshot := s.dbClient.Stats(ctx); snapshot != nil {
		return api.OK.SetData(snapshot).Build(c)
	}
	return api.OK.SetData(s.engine.Snapshot()).Build(c)
}

func (s *Server) GetParams(c echo.Context) error {
	params := s.engine.Params()
	return api.OK.SetData(types.Params{
		Chairman:        s.engine.ChairmanAddress().Hex(),
		ContractAddress: s.engine.Address().Hex(),
		MinimumQuorum:   params.MinimumQuorum,
		DebatingPeriod:  int64(params.DebatingPeriod.Seconds()),
		MinimumVotes:    params.MinimumVotes,
	}).Build(c)
}

func (s *Server) GetProposalsList(c echo.Context) error {
	ctx := context.Background()
	pagination, page, limit := getPagingOption(c)
	filter := &types.ProposalsFilter{
		Pagination: pagination,
		Status:     c.QueryParam("status"),
	}
	proposals, total, err := s.dbClient.Proposals(ctx, filter)
	if err != nil {
		s.logger.Warn("cannot get proposals from db, serving engine state", zap.Error(err))
		proposals, total = proposalsFromEngine(s.engine, filter)
	} else if filter.Status == "" && total != s.engine.ProposalCount() {
		// the indexer has not caught up with the engine yet
		s.logger.Debug("proposal archive lags engine",
			zap.Uint64("archived", total),
			zap.Uint64("engine", s.engine.ProposalCount()))
	}
	return api.OK.SetData(api.PagingResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Data:  proposals,
	}).Build(c)
}

func (s *Server) GetProposalDetails(c echo.Context) error {
	ctx := context.Background()
	proposalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return api.Invalid.Build(c)
	}
	result, err := s.cacheClient.ProposalByID(ctx, proposalID)
	if err == nil {
		return api.OK.SetData(result).Build(c)
	}
	s.logger.Debug("cannot find proposal in cache", zap.Uint64("id", proposalID))

	result, err = s.dbClient.ProposalByID(ctx, proposalID)
	if err == nil {
		return api.OK.SetData(result).Build(c)
	}
	s.logger.Debug("cannot find proposal in db", zap.Uint64("id", proposalID))

	if proposalID >= s.engine.ProposalCount() {
		return api.NotFound.Build(c)
	}
	proposal := s.engine.Proposal(proposalID)
	return api.OK.SetData(&proposal).Build(c)
}

func (s *Server) Participants(c echo.Context) error {
	ctx := context.Background()
	pagination, page, limit := getPagingOption(c)
	filter := &types.ParticipantsFilter{
		Pagination: pagination,
		ActiveOnly: c.QueryParam("active") == "true",
	}
	participants, total, err := s.dbClient.Participants(ctx, filter)
	if err != nil {
		s.logger.Warn("cannot get participants from db, serving engine state", zap.Error(err))
		participants, total = participantsFromEngine(s.engine, filter)
	}
	return api.OK.SetData(api.PagingResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Data:  participants,
	}).Build(c)
}

func (s *Server) Participant(c echo.Context) error {
	ctx := context.Background()
	address := c.Param("address")
	if !utils.IsValidAddress(address) {
		return api.Invalid.SetMsg("invalid address").Build(c)
	}
	participant, err := s.dbClient.ParticipantByAddress(ctx, common.HexToAddress(address).Hex())
	if err == nil {
		return api.OK.SetData(participant).Build(c)
	}
	s.logger.Debug("cannot find participant in db", zap.String("address", address))

	// accounts exist implicitly, an unknown address reads as zero
	return api.OK.SetData(s.engine.Participant(common.HexToAddress(address))).Build(c)
}

func (s *Server) Events(c echo.Context) error {
	ctx := context.Background()
	pagination, page, limit := getPagingOption(c)
	filter := &types.EventsFilter{
		Pagination: pagination,
		Address:    c.QueryParam("address"),
		Type:       c.QueryParam("type"),
	}
	if raw := c.QueryParam("proposalID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return api.Invalid.Build(c)
		}
		filter.ProposalID = &id
	}

	// Unfiltered pages of the newest events are what the UI polls, serve
	// those straight from the cache ring when possible.
	if filter.ProposalID == nil && filter.Address == "" && filter.Type == "" && pagination != nil {
		events, err := s.cacheClient.LatestEvents(ctx, pagination)
		if err == nil {
			if latestSeq, serr := s.cacheClient.LatestSeq(ctx); serr == nil {
				return api.OK.SetData(api.PagingResponse{
					Page:  page,
					Limit: limit,
					Total: latestSeq + 1,
					Data:  events,
				}).Build(c)
			}
		}
		s.logger.Debug("cannot serve latest events from cache", zap.Error(err))
	}

	events, total, err := s.dbClient.Events(ctx, filter)
	if err != nil {
		return api.InternalServer.Build(c)
	}
	return api.OK.SetData(api.PagingResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Data:  events,
	}).Build(c)
}
