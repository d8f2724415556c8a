// Package server
package server

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/commondao/governance-backend/governance"
)

// FinalizeExpired sweeps ballots past their voting window and finalizes
// them. Finalization is permissionless, so the sweep needs no identity. A
// ballot whose execution call fails stays open and is picked up again on the
// next sweep; every other error is final for that ballot.
func (s *Server) FinalizeExpired(ctx context.Context) error {
	ids := s.engine.ExpiredOpen()
	if len(ids) == 0 {
		return nil
	}
	lgr := s.logger.With(zap.Int("expired", len(ids)))
	lgr.Info("finalizing expired ballots")

	var lastErr error
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		err := s.engine.FinishVotes(id)
		s.metrics.MarkOperation("finishVotes", err)
		switch {
		case err == nil:
		case errors.Is(err, governance.ErrAlreadyFinished):
			// a FinishVotes request beat the sweep to it
		case errors.Is(err, governance.ErrExecutionFailed):
			lgr.Warn("ballot execution call failed, finalization stays open", zap.Uint64("id", id))
			s.metrics.MarkExecutionFailure()
			lastErr = err
		default:
			lgr.Error("cannot finalize ballot", zap.Uint64("id", id), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}
