package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commondao/governance-backend/types"
)

func TestNewWithoutTokenIsNop(t *testing.T) {
	n, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, n.Notify(context.Background(), "anything"))
	assert.NoError(t, n.Close())
}

func TestFormatEvent(t *testing.T) {
	added := FormatEvent(&types.Event{
		Type:        types.EventProposalAdded,
		ProposalID:  4,
		Description: "rotate the treasury key",
		EndTime:     1600003600,
	})
	assert.Contains(t, added, "#4")
	assert.Contains(t, added, "rotate the treasury key")

	finished := FormatEvent(&types.Event{
		Type:       types.EventFinished,
		ProposalID: 4,
		Passed:     true,
		Consenting: 600,
		Dissenters: 100,
		UsersVoted: 7,
	})
	assert.Contains(t, finished, "passed and executed")
	assert.Contains(t, finished, "600 for / 100 against")

	failed := FormatEvent(&types.Event{Type: types.EventFinished, ProposalID: 5})
	assert.Contains(t, failed, "did not pass")

	emergency := FormatEvent(&types.Event{Type: types.EventFinishedEmergency, ProposalID: 6})
	assert.Contains(t, emergency, "emergency")

	// ledger traffic stays quiet
	assert.Equal(t, "", FormatEvent(&types.Event{Type: types.EventCredited, Amount: 10}))
	assert.Equal(t, "", FormatEvent(&types.Event{Type: types.EventVoted}))
}
