// Package server
package server

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/metrics"
	"github.com/commondao/governance-backend/notify"
	"github.com/commondao/governance-backend/types"
)

// SyncJournal archives every journal event the indexer has not seen yet and
// folds the batch into the proposal and participant collections, the cache
// and the metrics. It is meant to run from a single loop; nextSeq is not
// guarded. Event writes are upserts keyed by seq, so a batch replayed after
// a failed tick lands on the same documents.
func (s *Server) SyncJournal(ctx context.Context) error {
	events := s.engine.Journal().Since(s.nextSeq)
	if len(events) == 0 {
		return nil
	}
	lgr := s.logger.With(zap.Uint64("fromSeq", s.nextSeq), zap.Int("events", len(events)))

	if err := s.dbClient.InsertEvents(ctx, events); err != nil {
		lgr.Warn("cannot archive events, will retry", zap.Error(err))
		return err
	}

	touchedProposals := make(map[uint64]struct{})
	touchedAccounts := make(map[string]struct{})
	passed := make(map[uint64]bool)
	for _, ev := range events {
		switch ev.Type {
		case types.EventProposalAdded, types.EventVoted:
			touchedProposals[ev.ProposalID] = struct{}{}
		case types.EventFinished:
			touchedProposals[ev.ProposalID] = struct{}{}
			passed[ev.ProposalID] = ev.Passed
			if ev.Passed {
				s.metrics.MarkFinalization(metrics.OutcomePassed)
			} else {
				s.metrics.MarkFinalization(metrics.OutcomeFailed)
			}
		case types.EventFinishedEmergency:
			touchedProposals[ev.ProposalID] = struct{}{}
			s.metrics.MarkFinalization(metrics.OutcomeEmergency)
		}
		if ev.Address != "" {
			touchedAccounts[ev.Address] = struct{}{}
		}
		if msg := notify.FormatEvent(ev); msg != "" {
			if err := s.notifier.Notify(ctx, msg); err != nil {
				lgr.Debug("cannot push notification", zap.Error(err))
			}
		}
	}

	for id := range touchedProposals {
		proposal := s.engine.Proposal(id)
		if didPass, ok := passed[id]; ok {
			proposal.Passed = didPass
		}
		if err := s.dbClient.UpsertProposal(ctx, &proposal); err != nil {
			lgr.Warn("cannot upsert proposal", zap.Uint64("id", id), zap.Error(err))
		}
		if err := s.cacheClient.UpdateProposal(ctx, &proposal); err != nil {
			lgr.Debug("cannot cache proposal", zap.Uint64("id", id), zap.Error(err))
		}
	}

	if len(touchedAccounts) > 0 {
		participants := make([]*types.Participant, 0, len(touchedAccounts))
		for addr := range touchedAccounts {
			participants = append(participants, s.engine.Participant(common.HexToAddress(addr)))
		}
		if err := s.dbClient.UpsertParticipants(ctx, participants); err != nil {
			lgr.Warn("cannot upsert participants", zap.Error(err))
		}
	}

	if err := s.cacheClient.PushEvents(ctx, events); err != nil {
		lgr.Debug("cannot push events to cache", zap.Error(err))
	}
	lastSeq := events[len(events)-1].Seq
	if err := s.cacheClient.SetLatestSeq(ctx, lastSeq); err != nil {
		lgr.Debug("cannot store latest seq in cache", zap.Error(err))
	}
	if err := s.cacheClient.UpdateProposalCount(ctx, s.engine.ProposalCount()); err != nil {
		lgr.Debug("cannot store proposal count in cache", zap.Error(err))
	}

	snapshot := s.engine.Snapshot()
	if err := s.dbClient.UpdateStats(ctx, snapshot); err != nil {
		lgr.Warn("cannot store stats", zap.Error(err))
	}
	if err := s.cacheClient.UpdateSnapshot(ctx, snapshot); err != nil {
		lgr.Debug("cannot cache snapshot", zap.Error(err))
	}
	s.metrics.ObserveSnapshot(snapshot)
	s.metrics.SetJournalSeq(lastSeq)

	s.nextSeq = lastSeq + 1
	lgr.Debug("journal batch archived", zap.Uint64("lastSeq", lastSeq))
	return nil
}
