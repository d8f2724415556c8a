package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commondao/governance-backend/types"
)

func TestProviderCounters(t *testing.T) {
	p, err := New("governance")
	require.NoError(t, err)

	p.MarkOperation("vote", nil)
	p.MarkOperation("vote", nil)
	p.MarkOperation("vote", errors.New("already voted"))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.operations.WithLabelValues("vote", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.operations.WithLabelValues("vote", "error")))

	p.MarkFinalization(OutcomePassed)
	p.MarkFinalization(OutcomeEmergency)
	p.MarkExecutionFailure()
	assert.Equal(t, float64(1), testutil.ToFloat64(p.finalizations.WithLabelValues(OutcomePassed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.execFailures))

	p.ObserveSnapshot(&types.GovernanceStats{ActiveParticipants: 10, TotalDeposited: 900, OpenProposals: 2})
	assert.Equal(t, float64(10), testutil.ToFloat64(p.activeParticipants))
	assert.Equal(t, float64(900), testutil.ToFloat64(p.totalDeposited))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.openProposals))
}

func TestProviderHandler(t *testing.T) {
	p, err := New("governance")
	require.NoError(t, err)
	p.MarkOperation("deposit", nil)
	p.SetJournalSeq(12)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	p.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "governance_operations_total")
	assert.Contains(t, body, "governance_journal_seq 12")
}

func TestProvidersAreIsolated(t *testing.T) {
	a, err := New("governance")
	require.NoError(t, err)
	b, err := New("governance")
	require.NoError(t, err)

	a.MarkExecutionFailure()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.execFailures))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.execFailures))
}
