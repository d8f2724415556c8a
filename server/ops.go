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
	"errors"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/api"
	"github.com/commondao/governance-backend/governance"
	"github.com/commondao/governance-backend/utils"
)

// Every mutating endpoint except FinishVotes names the account it acts for,
// so those check the shared request secret. Finalization after the deadline
// is open to anyone, exactly like the contract it mirrors.

type ledgerRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type proposalRequest struct {
	From        string `json:"from"`
	Target      string `json:"target"`
	Payload     string `json:"payload"`
	Description string `json:"description"`
}

type voteRequest struct {
	From    string `json:"from"`
	Support bool   `json:"support"`
}

type roleRequest struct {
	From    string `json:"from"`
	Role    string `json:"role"`
	Address string `json:"address"`
}

func (s *Server) Deposit(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req ledgerRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) {
		return api.Invalid.SetMsg("invalid from address").Build(c)
	}
	from := common.HexToAddress(req.From)
	err := s.engine.Deposit(from, req.Amount)
	s.metrics.MarkOperation("deposit", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.SetData(s.engine.Participant(from)).Build(c)
}

func (s *Server) Withdraw(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req ledgerRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) {
		return api.Invalid.SetMsg("invalid from address").Build(c)
	}
	from := common.HexToAddress(req.From)
	err := s.engine.Withdraw(from, req.Amount)
	s.metrics.MarkOperation("withdraw", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.SetData(s.engine.Participant(from)).Build(c)
}

func (s *Server) ReceiveEther(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req ledgerRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) {
		return api.Invalid.SetMsg("invalid from address").Build(c)
	}
	err := s.engine.ReceiveEther(common.HexToAddress(req.From), req.Amount)
	s.metrics.MarkOperation("receiveEther", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.SetData(struct {
		EtherBalance uint64 `json:"etherBalance"`
	}{
		EtherBalance: s.engine.EtherBalance(),
	}).Build(c)
}

func (s *Server) WithdrawEther(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req ledgerRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) || !utils.IsValidAddress(req.To) {
		return api.Invalid.SetMsg("invalid address").Build(c)
	}
	err := s.engine.WithdrawEther(common.HexToAddress(req.From), common.HexToAddress(req.To), req.Amount)
	s.metrics.MarkOperation("withdrawEther", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.SetData(struct {
		EtherBalance uint64 `json:"etherBalance"`
	}{
		EtherBalance: s.engine.EtherBalance(),
	}).Build(c)
}

func (s *Server) AddProposal(c echo.Context) error {
	lgr := s.Logger
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req proposalRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) || !utils.IsValidAddress(req.Target) {
		return api.Invalid.SetMsg("invalid address").Build(c)
	}
	var payload []byte
	if req.Payload != "" {
		data, err := hexutil.Decode(req.Payload)
		if err != nil {
			return api.Invalid.SetMsg("payload is not hex calldata").Build(c)
		}
		payload = data
	}
	id, err := s.engine.AddProposal(common.HexToAddress(req.From), common.HexToAddress(req.Target), payload, req.Description)
	s.metrics.MarkOperation("addProposal", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	lgr.Info("New ballot", zap.Uint64("id", id), zap.String("target", req.Target))
	return api.OK.SetData(s.engine.Proposal(id)).Build(c)
}

func (s *Server) Vote(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return api.Invalid.Build(c)
	}
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) {
		return api.Invalid.SetMsg("invalid from address").Build(c)
	}
	err = s.engine.Vote(common.HexToAddress(req.From), id, req.Support)
	s.metrics.MarkOperation("vote", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.SetData(s.engine.Proposal(id)).Build(c)
}

// FinishVotes closes an expired ballot. No secret here: once the deadline
// has passed anyone may trigger finalization.
func (s *Server) FinishVotes(c echo.Context) error {
	lgr := s.Logger
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return api.Invalid.Build(c)
	}
	err = s.engine.FinishVotes(id)
	s.metrics.MarkOperation("finishVotes", err)
	if err != nil {
		if errors.Is(err, governance.ErrExecutionFailed) {
			lgr.Warn("ballot execution call failed, finalization stays open", zap.Uint64("id", id))
			s.metrics.MarkExecutionFailure()
		}
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.SetData(s.engine.Proposal(id)).Build(c)
}

func (s *Server) MintTokens(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req ledgerRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.To) {
		return api.Invalid.SetMsg("invalid to address").Build(c)
	}
	to := common.HexToAddress(req.To)
	s.token.Mint(to, req.Amount)
	s.metrics.MarkOperation("mintTokens", nil)
	return api.OK.SetData(struct {
		Balance uint64 `json:"balance"`
	}{
		Balance: s.token.BalanceOf(to),
	}).Build(c)
}

// ApproveTokens lets an account allow the governance contract to pull its
// deposit. The spender is always the engine address.
func (s *Server) ApproveTokens(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req ledgerRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) {
		return api.Invalid.SetMsg("invalid from address").Build(c)
	}
	from := common.HexToAddress(req.From)
	s.token.Approve(from, s.engine.Address(), req.Amount)
	s.metrics.MarkOperation("approveTokens", nil)
	return api.OK.SetData(struct {
		Allowance uint64 `json:"allowance"`
	}{
		Allowance: s.token.Allowance(from, s.engine.Address()),
	}).Build(c)
}

func (s *Server) GrantRole(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return api.Invalid.Build(c)
	}
	if !utils.IsValidAddress(req.From) || !utils.IsValidAddress(req.Address) || req.Role == "" {
		return api.Invalid.SetMsg("invalid role grant").Build(c)
	}
	err := s.engine.GrantRole(common.HexToAddress(req.From), governance.Role(req.Role), common.HexToAddress(req.Address))
	s.metrics.MarkOperation("grantRole", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.Build(c)
}

func (s *Server) RevokeRole(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != s.infoServer.HttpRequestSecret {
		return api.Unauthorized.Build(c)
	}
	addr := c.Param("address")
	from := c.QueryParam("from")
	role := c.QueryParam("role")
	if !utils.IsValidAddress(from) || !utils.IsValidAddress(addr) || role == "" {
		return api.Invalid.SetMsg("invalid role revoke").Build(c)
	}
	err := s.engine.RevokeRole(common.HexToAddress(from), governance.Role(role), common.HexToAddress(addr))
	s.metrics.MarkOperation("revokeRole", err)
	if err != nil {
		return api.Invalid.SetMsg(err.Error()).Build(c)
	}
	return api.OK.Build(c)
}
