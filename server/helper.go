// Package server
package server

import (
	"strconv"

	"github.com/labstack/echo"

	"github.com/commondao/governance-backend/governance"
	"github.com/commondao/governance-backend/types"
)

func getPagingOption(c echo.Context) (*types.Pagination, int, int) {
	pageParams := c.QueryParam("page")
	limitParams := c.QueryParam("limit")
	if pageParams == "" && limitParams == "" {
		return nil, 0, 0
	}
	page, err := strconv.Atoi(pageParams)
	if err != nil {
		page = 1
	}
	page = page - 1
	limit, err := strconv.Atoi(limitParams)
	if err != nil {
		limit = 25
	}
	pagination := &types.Pagination{
		Skip:  page * limit,
		Limit: limit,
	}
	pagination.Sanitize()
	return pagination, page + 1, limit
}

// proposalsFromEngine serves the listing straight from engine state when the
// archive is unreachable. The status filter is applied in memory.
func proposalsFromEngine(engine *governance.Engine, filter *types.ProposalsFilter) ([]*types.Proposal, uint64) {
	all := engine.Proposals(nil)
	if filter.Status != "" {
		filtered := make([]*types.Proposal, 0, len(all))
		for _, p := range all {
			switch filter.Status {
			case types.ProposalStatusOpen:
				if !p.IsFinished {
					filtered = append(filtered, p)
				}
			case types.ProposalStatusFinished:
				if p.IsFinished {
					filtered = append(filtered, p)
				}
			}
		}
		all = filtered
	}
	total := uint64(len(all))
	if pag := filter.Pagination; pag != nil {
		if pag.Skip >= len(all) {
			return nil, total
		}
		end := pag.Skip + pag.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[pag.Skip:end]
	}
	return all, total
}

func participantsFromEngine(engine *governance.Engine, filter *types.ParticipantsFilter) ([]*types.Participant, uint64) {
	all := engine.Participants(nil)
	if filter.ActiveOnly {
		filtered := make([]*types.Participant, 0, len(all))
		for _, p := range all {
			if p.Balance > 0 {
				filtered = append(filtered, p)
			}
		}
		all = filtered
	}
	total := uint64(len(all))
	if pag := filter.Pagination; pag != nil {
		if pag.Skip >= len(all) {
			return nil, total
		}
		end := pag.Skip + pag.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[pag.Skip:end]
	}
	return all, total
}
