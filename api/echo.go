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

package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/commondao/governance-backend/cfg"
)

type restDefinition struct {
	method      string
	path        string
	fn          func(c echo.Context) error
	middlewares []echo.MiddlewareFunc
}

func bind(gr *echo.Group, srv EchoServer) {
	apis := []restDefinition{
		{
			method:      echo.GET,
			path:        "/ping",
			fn:          srv.Ping,
			middlewares: nil,
		},
		{
			method:      echo.GET,
			path:        "/status",
			fn:          srv.ServerStatus,
			middlewares: nil,
		},
		{
			method:      echo.PUT,
			path:        "/status",
			fn:          srv.UpdateServerStatus,
			middlewares: nil,
		},
		{
			method: echo.GET,
			path:   "/dashboard/stats",
			fn:     srv.Stats,
		},
		{
			method: echo.GET,
			path:   "/governance/params",
			fn:     srv.GetParams,
		},
		// Voting ledger
		{
			method: echo.POST,
			// Body: {"address": "0x...", "amount": 100}
			path: "/governance/deposit",
			fn:   srv.Deposit,
		},
		{
			method: echo.POST,
			path:   "/governance/withdraw",
			fn:     srv.Withdraw,
		},
		{
			method: echo.POST,
			path:   "/governance/ether",
			fn:     srv.ReceiveEther,
		},
		{
			method: echo.POST,
			path:   "/governance/ether/withdraw",
			fn:     srv.WithdrawEther,
		},
		// Proposal
		{
			method: echo.POST,
			// Body: {"from": "0x...", "target": "0x...", "payload": "0x...", "description": "..."}
			path:        "/proposal",
			fn:          srv.AddProposal,
			middlewares: nil,
		},
		{
			method: echo.GET,
			// Query params: ?page=0&limit=10&status=(open|finished)
			path:        "/proposal",
			fn:          srv.GetProposalsList,
			middlewares: nil,
		},
		{
			method:      echo.GET,
			path:        "/proposal/:id",
			fn:          srv.GetProposalDetails,
			middlewares: nil,
		},
		{
			method: echo.POST,
			// Body: {"from": "0x...", "support": true}
			path:        "/proposal/:id/votes",
			fn:          srv.Vote,
			middlewares: nil,
		},
		{
			method:      echo.POST,
			path:        "/proposal/:id/finish",
			fn:          srv.FinishVotes,
			middlewares: nil,
		},
		// Participants
		{
			method: echo.GET,
			// Query params: ?page=0&limit=10&active=true
			path:        "/participants",
			fn:          srv.Participants,
			middlewares: nil,
		},
		{
			method:      echo.GET,
			path:        "/participants/:address",
			fn:          srv.Participant,
			middlewares: nil,
		},
		// Events
		{
			method: echo.GET,
			// Query params: ?page=0&limit=10&proposalID=0&address=0x&type=voted
			path:        "/events",
			fn:          srv.Events,
			middlewares: nil,
		},
	}
	bindAdminAPIs(gr, srv)
	for _, api := range apis {
		gr.Add(api.method, api.path, api.fn, api.middlewares...)
	}
}

// Start wires the route table under /api/v1 and blocks serving it. The
// metrics handler, when given, is mounted at /metrics outside the API
// group.
func Start(srv EchoServer, cfg cfg.GovernanceConfig, metricsHandler http.Handler) {
	e := echo.New()

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Gzip())

	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	v1Gr := e.Group("/api/v1")
	bind(v1Gr, srv)
	if err := e.Start(cfg.Port); err != nil {
		fmt.Println("cannot start echo server", err.Error())
		panic(err)
	}
}
