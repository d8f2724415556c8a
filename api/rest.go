// Package api
package api

import (
	"github.com/labstack/echo"
)

// EchoServer define all API expose
type EchoServer interface {
	// General
	Ping(c echo.Context) error
	ServerStatus(c echo.Context) error
	UpdateServerStatus(c echo.Context) error
	Stats(c echo.Context) error
	GetParams(c echo.Context) error

	// Voting ledger
	Deposit(c echo.Context) error
	Withdraw(c echo.Context) error
	ReceiveEther(c echo.Context) error
	WithdrawEther(c echo.Context) error

	// Proposal
	AddProposal(c echo.Context) error
	Vote(c echo.Context) error
	FinishVotes(c echo.Context) error
	GetProposalsList(c echo.Context) error
	GetProposalDetails(c echo.Context) error

	// Participants
	Participants(c echo.Context) error
	Participant(c echo.Context) error

	// Events
	Events(c echo.Context) error

	// Admin sector
	MintTokens(c echo.Context) error
	ApproveTokens(c echo.Context) error
	GrantRole(c echo.Context) error
	RevokeRole(c echo.Context) error
}

func bindAdminAPIs(gr *echo.Group, srv EchoServer) {
	apis := []restDefinition{
		{
			method:      echo.POST,
			path:        "/admin/token/mint",
			fn:          srv.MintTokens,
			middlewares: nil,
		},
		{
			method:      echo.POST,
			path:        "/admin/token/approve",
			fn:          srv.ApproveTokens,
			middlewares: nil,
		},
		{
			method:      echo.POST,
			path:        "/admin/roles",
			fn:          srv.GrantRole,
			middlewares: nil,
		},
		{
			method:      echo.DELETE,
			path:        "/admin/roles/:address",
			fn:          srv.RevokeRole,
			middlewares: nil,
		},
	}
	for _, api := range apis {
		gr.Add(api.method, api.path, api.fn, api.middlewares...)
	}
}
