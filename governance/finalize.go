package governance

import (
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

// FinishVotes closes an expired ballot. Anyone may trigger it. A passing
// ballot executes its payload against the target contract before any state
// changes; when that call errors the whole finalization is abandoned and
// the ballot stays open, which is the one retryable failure in the system.
func (e *Engine) FinishVotes(id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finishVotes(id)
}

func (e *Engine) finishVotes(id uint64) error {
	if err := e.guards.enter(opFinishVotes); err != nil {
		return err
	}
	defer e.guards.exit(opFinishVotes)

	if id >= uint64(len(e.proposals)) {
		return ErrProposalNotFound
	}
	p := e.proposals[id]
	if e.now() < p.endTime {
		return ErrVotingNotFinished
	}
	if p.finished {
		return ErrAlreadyFinished
	}

	// quorum threshold in tenths of a participant, the same fixed-point
	// walk the contract takes: scale up first, divide, then apply the
	// percentage
	votersPercentage := e.activeUsers * 1000 / 100 * e.params.MinimumQuorum
	votesAmount := p.consenting + p.dissenters
	passed := votesAmount >= e.params.MinimumVotes && p.usersVoted*1000 >= votersPercentage

	if passed {
		atomic.AddInt32(&e.inCall, 1)
		_, err := e.exec.Call(e.self, p.target, p.payload)
		atomic.AddInt32(&e.inCall, -1)
		if err != nil {
			e.lgr.Warn("ballot execution failed, staying open",
				zap.Uint64("id", id), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrExecutionFailed, err)
		}
	}

	p.finished = true
	e.publish(&types.Event{
		Type:       types.EventFinished,
		ProposalID: id,
		Passed:     passed,
		Consenting: p.consenting,
		Dissenters: p.dissenters,
		UsersVoted: p.usersVoted,
		Target:     p.target.Hex(),
	})
	e.lgr.Info("ballot finished",
		zap.Uint64("id", id),
		zap.Bool("passed", passed),
		zap.Uint64("consenting", p.consenting),
		zap.Uint64("dissenters", p.dissenters),
		zap.Uint64("usersVoted", p.usersVoted))
	return nil
}

// emergencyEndVotes force-closes an expired ballot without tallying or
// executing anything. It answers only to the engine's own address, so the
// sole way to reach it is a passed ballot whose target is the engine
// itself.
func (e *Engine) emergencyEndVotes(caller common.Address, id uint64) error {
	if err := e.guards.enter(opEmergencyEnd); err != nil {
		return err
	}
	defer e.guards.exit(opEmergencyEnd)

	if caller != e.self {
		return ErrOnlySelfCall
	}
	if id >= uint64(len(e.proposals)) {
		return ErrProposalNotFound
	}
	p := e.proposals[id]
	if e.now() < p.endTime {
		return ErrVotingNotFinished
	}
	if p.finished {
		return ErrAlreadyFinished
	}

	p.finished = true
	e.publish(&types.Event{
		Type:       types.EventFinishedEmergency,
		ProposalID: id,
	})
	e.lgr.Warn("ballot force finished", zap.Uint64("id", id))
	return nil
}

// handleCall is the contract code at the engine's own address. It only
// answers while a finalization call is in flight; the engine mutex is
// already held on that path, so the dispatched methods run unlocked.
func (e *Engine) handleCall(env *CallEnv, payload []byte) ([]byte, error) {
	if atomic.LoadInt32(&e.inCall) == 0 {
		return nil, ErrNoCallInFlight
	}
	switch {
	case selectorIs(payload, selEmergencyEndVotes):
		id, err := decodeIDCall(payload)
		if err != nil {
			return nil, err
		}
		return nil, e.emergencyEndVotes(env.Caller, id)
	case selectorIs(payload, selFinishVotes):
		id, err := decodeIDCall(payload)
		if err != nil {
			return nil, err
		}
		return nil, e.finishVotes(id)
	default:
		return nil, ErrUnknownMethod
	}
}
