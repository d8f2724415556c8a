package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

// AddProposal opens a new ballot. Ids are handed out sequentially from 0.
// The voting window closes at creation time plus the debating period and
// never moves afterwards. Chairman only.
func (e *Engine) AddProposal(creator, target common.Address, payload []byte, description string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addProposal(creator, target, payload, description)
}

func (e *Engine) addProposal(creator, target common.Address, payload []byte, description string) (uint64, error) {
	if err := e.guards.enter(opAddProposal); err != nil {
		return 0, err
	}
	defer e.guards.exit(opAddProposal)

	if !e.roles.Has(RoleChairman, creator) {
		return 0, ErrNotEnoughRights
	}
	if target == (common.Address{}) {
		return 0, ErrEmptyTarget
	}

	p := &proposalRecord{
		id:          uint64(len(e.proposals)),
		endTime:     e.now() + e.debatingPeriodSeconds(),
		target:      target,
		payload:     append([]byte(nil), payload...),
		description: description,
	}
	e.proposals = append(e.proposals, p)

	e.publish(&types.Event{
		Type:        types.EventProposalAdded,
		ProposalID:  p.id,
		Address:     creator.Hex(),
		Target:      target.Hex(),
		Description: description,
		EndTime:     p.endTime,
	})
	e.lgr.Info("proposal added",
		zap.Uint64("id", p.id),
		zap.String("target", target.Hex()),
		zap.String("payload", hexutil.Encode(p.payload)),
		zap.Uint64("endTime", p.endTime))
	return p.id, nil
}

// Vote casts the voter's entire current balance onto one side of an open
// ballot. The account's withdrawal lock is overwritten with this ballot's
// end time, even when an earlier vote set a later one.
func (e *Engine) Vote(voter common.Address, id uint64, support bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vote(voter, id, support)
}

func (e *Engine) vote(voter common.Address, id uint64, support bool) error {
	if err := e.guards.enter(opVote); err != nil {
		return err
	}
	defer e.guards.exit(opVote)

	if id >= uint64(len(e.proposals)) {
		return ErrProposalNotFound
	}
	p := e.proposals[id]
	u := e.users[voter]
	if u == nil || u.balance == 0 {
		return ErrNoVotingTokens
	}
	if e.now() >= p.endTime {
		return ErrVotingFinished
	}
	if _, dup := u.voted[id]; dup {
		return ErrAlreadyVoted
	}

	if support {
		p.consenting += u.balance
	} else {
		p.dissenters += u.balance
	}
	p.usersVoted++
	u.voted[id] = struct{}{}
	u.votedOrder = append(u.votedOrder, id)
	u.lastVoteEndTime = p.endTime

	e.publish(&types.Event{
		Type:       types.EventVoted,
		ProposalID: id,
		Address:    voter.Hex(),
		Support:    support,
		Amount:     u.balance,
	})
	return nil
}
