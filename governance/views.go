package governance

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/commondao/governance-backend/types"
)

// Address returns the engine's own contract address.
func (e *Engine) Address() common.Address { return e.self }

func (e *Engine) ChairmanAddress() common.Address { return e.chairman }

func (e *Engine) Params() Params { return e.params }

// Executor exposes the contract registry so callers can deploy simulated
// targets next to the engine.
func (e *Engine) Executor() *ContractRegistry { return e.exec }

func (e *Engine) Journal() *Journal { return e.journal }

func (e *Engine) HasRole(role Role, addr common.Address) bool {
	return e.roles.Has(role, addr)
}

func (e *Engine) ActiveParticipants() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeUsers
}

func (e *Engine) EtherBalance() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.etherBalance
}

func (e *Engine) ProposalCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.proposals))
}

func (e *Engine) Balance(addr common.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if u := e.users[addr]; u != nil {
		return u.balance
	}
	return 0
}

func (e *Engine) HasVoted(addr common.Address, id uint64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	u := e.users[addr]
	if u == nil {
		return false
	}
	_, ok := u.voted[id]
	return ok
}

func (p *proposalRecord) snapshot(at int64) *types.Proposal {
	return &types.Proposal{
		ID:             p.id,
		EndTime:        p.endTime,
		Consenting:     p.consenting,
		Dissenters:     p.dissenters,
		UsersVoted:     p.usersVoted,
		TargetContract: p.target.Hex(),
		IsFinished:     p.finished,
		EncodedPayload: hexutil.Encode(p.payload),
		Description:    p.description,
		UpdateTime:     at,
	}
}

// Proposal returns a copy of one ballot record. Unknown ids yield a
// zero-valued record the way a contract mapping would; callers that care
// check ProposalCount first.
func (e *Engine) Proposal(id uint64) types.Proposal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if id >= uint64(len(e.proposals)) {
		return types.Proposal{ID: id}
	}
	return *e.proposals[id].snapshot(int64(e.now()))
}

// Proposals pages through ballots in id order. A nil pagination returns
// everything.
func (e *Engine) Proposals(pag *types.Pagination) []*types.Proposal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	skip, limit := 0, len(e.proposals)
	if pag != nil {
		skip, limit = pag.Skip, pag.Limit
	}
	if skip >= len(e.proposals) {
		return nil
	}
	end := skip + limit
	if end > len(e.proposals) {
		end = len(e.proposals)
	}
	at := int64(e.now())
	out := make([]*types.Proposal, 0, end-skip)
	for _, p := range e.proposals[skip:end] {
		out = append(out, p.snapshot(at))
	}
	return out
}

// Participant returns the account snapshot for any address. Accounts exist
// implicitly, so an address that never deposited reads as all zeroes.
func (e *Engine) Participant(addr common.Address) *types.Participant {
	e.mu.RLock()
	defer e.mu.RUnlock()
	part := &types.Participant{
		Address:    addr.Hex(),
		UpdateTime: int64(e.now()),
	}
	if u := e.users[addr]; u != nil {
		part.Balance = u.balance
		part.LastVoteEndTime = u.lastVoteEndTime
		part.VotedProposals = append([]uint64(nil), u.votedOrder...)
	}
	return part
}

// Participants pages through known accounts ordered by address.
func (e *Engine) Participants(pag *types.Pagination) []*types.Participant {
	e.mu.RLock()
	defer e.mu.RUnlock()
	addrs := make([]common.Address, 0, len(e.users))
	for addr := range e.users {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Hex() < addrs[j].Hex()
	})
	skip, limit := 0, len(addrs)
	if pag != nil {
		skip, limit = pag.Skip, pag.Limit
	}
	if skip >= len(addrs) {
		return nil
	}
	end := skip + limit
	if end > len(addrs) {
		end = len(addrs)
	}
	at := int64(e.now())
	out := make([]*types.Participant, 0, end-skip)
	for _, addr := range addrs[skip:end] {
		u := e.users[addr]
		out = append(out, &types.Participant{
			Address:         addr.Hex(),
			Balance:         u.balance,
			LastVoteEndTime: u.lastVoteEndTime,
			VotedProposals:  append([]uint64(nil), u.votedOrder...),
			UpdateTime:      at,
		})
	}
	return out
}

// Snapshot aggregates the engine state for the dashboard and the archive.
func (e *Engine) Snapshot() *types.GovernanceStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var open uint64
	for _, p := range e.proposals {
		if !p.finished {
			open++
		}
	}
	return &types.GovernanceStats{
		ActiveParticipants: e.activeUsers,
		TotalDeposited:     e.totalDeposited,
		ProposalCount:      uint64(len(e.proposals)),
		OpenProposals:      open,
		EtherBalance:       e.etherBalance,
		EventCount:         e.journal.Len(),
		UpdateTime:         int64(e.now()),
	}
}

// ExpiredOpen lists ballots past their window and not yet finished, oldest
// first, for the finalizer loop.
func (e *Engine) ExpiredOpen() []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	now := e.now()
	var ids []uint64
	for _, p := range e.proposals {
		if !p.finished && now >= p.endTime {
			ids = append(ids, p.id)
		}
	}
	return ids
}
