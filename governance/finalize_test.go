package governance

import (
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVoters(n int) []common.Address {
	voters := make([]common.Address, n)
	for i := range voters {
		voters[i] = common.HexToAddress(fmt.Sprintf("0x00000000000000000000000000000000000000%02x", i+1))
	}
	return voters
}

// registerSink deploys a recording handler at the beneficiary address and
// returns a counter of calls it received.
func registerSink(e *Engine) *int {
	calls := new(int)
	e.Executor().Register(beneficiary, func(env *CallEnv, payload []byte) ([]byte, error) {
		*calls++
		return nil, nil
	})
	return calls
}

// Ten participants with quorum 51 puts the threshold at 5100 tenths, so six
// voters clear it and five do not.
func TestFinishVotesQuorumBoundary(t *testing.T) {
	cases := []struct {
		name   string
		voters int
		passed bool
	}{
		{name: "six of ten passes", voters: 6, passed: true},
		{name: "five of ten fails", voters: 5, passed: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, token, clock := setupEngine(t, defaultParams())
			calls := registerSink(e)

			all := testVoters(10)
			for _, v := range all {
				depositAll(t, e, token, v, 1000)
			}
			require.Equal(t, uint64(10), e.ActiveParticipants())

			id, err := e.AddProposal(testChairman, beneficiary, nil, "quorum boundary")
			require.NoError(t, err)
			for _, v := range all[:c.voters] {
				require.NoError(t, e.Vote(v, id, true))
			}

			clock.Advance(time.Hour)
			require.NoError(t, e.FinishVotes(id))

			p := e.Proposal(id)
			assert.True(t, p.IsFinished)
			if c.passed {
				assert.Equal(t, 1, *calls)
			} else {
				assert.Equal(t, 0, *calls)
			}

			events := e.Journal().All()
			last := events[len(events)-1]
			assert.Equal(t, "finished", last.Type)
			assert.Equal(t, id, last.ProposalID)
			assert.Equal(t, c.passed, last.Passed)
			assert.Equal(t, uint64(c.voters), last.UsersVoted)
		})
	}
}

func TestFinishVotesMinimumVotes(t *testing.T) {
	params := defaultParams()
	params.MinimumQuorum = 0
	params.MinimumVotes = 500
	e, token, clock := setupEngine(t, params)
	calls := registerSink(e)

	depositAll(t, e, token, alice, 499)
	id, err := e.AddProposal(testChairman, beneficiary, nil, "weight floor")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, id, false))

	clock.Advance(time.Hour)
	require.NoError(t, e.FinishVotes(id))

	// quorum satisfied but combined weight under the floor: finished, not
	// passed, nothing executed
	p := e.Proposal(id)
	assert.True(t, p.IsFinished)
	assert.Equal(t, 0, *calls)
	events := e.Journal().All()
	assert.False(t, events[len(events)-1].Passed)
}

func TestFinishVotesPrematureAndUnknown(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	assert.ErrorIs(t, e.FinishVotes(3), ErrProposalNotFound)

	id, err := e.AddProposal(testChairman, beneficiary, nil, "too soon")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, id, true))

	assert.ErrorIs(t, e.FinishVotes(id), ErrVotingNotFinished)
	clock.Advance(59 * time.Minute)
	assert.ErrorIs(t, e.FinishVotes(id), ErrVotingNotFinished)
	assert.False(t, e.Proposal(id).IsFinished)
}

func TestFinishVotesOnlyOnce(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	registerSink(e)
	depositAll(t, e, token, alice, 100)

	id, err := e.AddProposal(testChairman, beneficiary, nil, "once")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, id, true))

	clock.Advance(2 * time.Hour)
	require.NoError(t, e.FinishVotes(id))
	assert.ErrorIs(t, e.FinishVotes(id), ErrAlreadyFinished)
	assert.True(t, e.Proposal(id).IsFinished)
}

// A failing execution call aborts the whole finalization: the ballot stays
// open with its tallies intact and a later retry can succeed. This is the
// one retryable failure.
func TestFailedExecutionLeavesBallotOpen(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	// nothing registered at the beneficiary address yet
	id, err := e.AddProposal(testChairman, beneficiary, nil, "mistargeted")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, id, true))

	clock.Advance(time.Hour)
	before := e.Proposal(id)
	journalLen := e.Journal().Len()

	err = e.FinishVotes(id)
	assert.ErrorIs(t, err, ErrExecutionFailed)

	after := e.Proposal(id)
	assert.False(t, after.IsFinished)
	assert.Equal(t, before.Consenting, after.Consenting)
	assert.Equal(t, before.Dissenters, after.Dissenters)
	assert.Equal(t, before.UsersVoted, after.UsersVoted)
	assert.Equal(t, journalLen, e.Journal().Len())

	// deploy the target, then the same finalization goes through
	calls := registerSink(e)
	require.NoError(t, e.FinishVotes(id))
	assert.True(t, e.Proposal(id).IsFinished)
	assert.Equal(t, 1, *calls)
}

func TestExecutionCallIdentityAndPayload(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	var gotCaller common.Address
	var gotPayload []byte
	e.Executor().Register(beneficiary, func(env *CallEnv, payload []byte) ([]byte, error) {
		gotCaller = env.Caller
		gotPayload = append([]byte(nil), payload...)
		return nil, nil
	})

	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	id, err := e.AddProposal(testChairman, beneficiary, payload, "payload through")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, id, true))
	clock.Advance(time.Hour)
	require.NoError(t, e.FinishVotes(id))

	assert.Equal(t, e.Address(), gotCaller)
	assert.Equal(t, payload, gotPayload)
}

// The emergency path is an ordinary ballot whose target is the engine
// itself; its execution call force-closes a stuck ballot without tallying.
func TestEmergencyEndViaSelfTargetedBallot(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	// ballot 0 passes but its target never existed, so it is stuck open
	stuck, err := e.AddProposal(testChairman, beneficiary, nil, "stuck")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, stuck, true))
	clock.Advance(time.Hour)
	assert.ErrorIs(t, e.FinishVotes(stuck), ErrExecutionFailed)

	rescue, err := e.AddProposal(testChairman, e.Address(), EmergencyEndPayload(stuck), "force close 0")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, rescue, true))
	clock.Advance(time.Hour)
	require.NoError(t, e.FinishVotes(rescue))

	assert.True(t, e.Proposal(stuck).IsFinished)
	assert.True(t, e.Proposal(rescue).IsFinished)

	events := e.Journal().All()
	var kinds []string
	for _, ev := range events[len(events)-2:] {
		kinds = append(kinds, ev.Type)
	}
	assert.Equal(t, []string{"finishedEmergency", "finished"}, kinds)
}

func TestEmergencyEndRejectsForeignCaller(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	stuck, err := e.AddProposal(testChairman, beneficiary, nil, "stuck")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, stuck, true))

	// a relay contract trying to reach the emergency method carries its own
	// address as caller, not the engine's
	relay := common.HexToAddress("0x0000000000000000000000000000000000000d01")
	e.Executor().Register(relay, func(env *CallEnv, payload []byte) ([]byte, error) {
		return env.Call(e.Address(), payload)
	})

	viaRelay, err := e.AddProposal(testChairman, relay, EmergencyEndPayload(stuck), "relayed")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, viaRelay, true))

	clock.Advance(2 * time.Hour)
	err = e.FinishVotes(viaRelay)
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.False(t, e.Proposal(stuck).IsFinished)
	assert.False(t, e.Proposal(viaRelay).IsFinished)
}

func TestEmergencyEndUnreachableFromOutside(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	id, err := e.AddProposal(testChairman, beneficiary, nil, "cold call")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, id, true))
	clock.Advance(time.Hour)

	// poking the registry directly, even with a forged caller, is rejected
	// because no finalization call is in flight
	_, err = e.Executor().Call(e.Address(), e.Address(), EmergencyEndPayload(id))
	assert.ErrorIs(t, err, ErrNoCallInFlight)
	_, err = e.Executor().Call(alice, e.Address(), EmergencyEndPayload(id))
	assert.ErrorIs(t, err, ErrNoCallInFlight)
	assert.False(t, e.Proposal(id).IsFinished)
}

// finishVotes cannot be re-entered through its own execution call; the
// per-operation guard turns the recursion into a failed execution.
func TestReentrantFinalizationBlocked(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	victim, err := e.AddProposal(testChairman, beneficiary, nil, "victim")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, victim, true))

	recursive, err := e.AddProposal(testChairman, e.Address(), FinishVotesPayload(victim), "recursive close")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, recursive, true))

	clock.Advance(2 * time.Hour)
	err = e.FinishVotes(recursive)
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.False(t, e.Proposal(recursive).IsFinished)
	assert.False(t, e.Proposal(victim).IsFinished)
}

func TestEmergencyEndValidation(t *testing.T) {
	e, token, clock := setupEngine(t, defaultParams())
	depositAll(t, e, token, alice, 100)

	open, err := e.AddProposal(testChairman, beneficiary, nil, "still open")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, open, true))

	// rescue ballot created later, so by the time it can execute, the
	// target ballot is both expired and, here, unknown
	rescueUnknown, err := e.AddProposal(testChairman, e.Address(), EmergencyEndPayload(99), "no such ballot")
	require.NoError(t, err)
	require.NoError(t, e.Vote(alice, rescueUnknown, true))

	clock.Advance(2 * time.Hour)
	err = e.FinishVotes(rescueUnknown)
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.ErrorContains(t, err, "proposal not found")
}

func TestEmergencyPayloadShape(t *testing.T) {
	payload := EmergencyEndPayload(300)
	require.Len(t, payload, 36)
	assert.Equal(t, selEmergencyEndVotes, payload[:4])
	id, err := decodeIDCall(payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), id)

	_, err = decodeIDCall(payload[:10])
	assert.ErrorIs(t, err, ErrShortCalldata)
}
