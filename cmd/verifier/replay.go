// Package main
package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/cfg"
	"github.com/commondao/governance-backend/governance"
	"github.com/commondao/governance-backend/types"
)

// archive is the read-only slice of storage the verifier consumes. The full
// db.Client satisfies it.
type archive interface {
	Events(ctx context.Context, filter *types.EventsFilter) ([]*types.Event, uint64, error)
	Proposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error)
	Stats(ctx context.Context) *types.GovernanceStats
}

// verifyArchive rebuilds the run from the archived journal: a fresh engine
// on a manual clock consumes every event as the operation that produced it,
// then the stream the replay emitted is compared against the archive entry
// by entry. Returns the divergence count and the number of archived events.
func verifyArchive(ctx context.Context, store archive, serviceCfg cfg.GovernanceConfig, logger *zap.Logger) (int, int, error) {
	archived, _, err := store.Events(ctx, &types.EventsFilter{})
	if err != nil {
		return 0, 0, fmt.Errorf("cannot load archived events: %v", err)
	}
	if len(archived) == 0 {
		logger.Info("archive is empty, nothing to verify")
		return 0, 0, nil
	}
	// storage serves the journal newest first
	sort.Slice(archived, func(i, j int) bool {
		return archived[i].Seq < archived[j].Seq
	})

	// The proposalAdded event does not carry the payload, the archived
	// ballot record does.
	proposals, _, err := store.Proposals(ctx, &types.ProposalsFilter{})
	if err != nil {
		return 0, 0, fmt.Errorf("cannot load archived proposals: %v", err)
	}
	payloads := make(map[uint64][]byte, len(proposals))
	for _, p := range proposals {
		payload, err := hexutil.Decode(p.EncodedPayload)
		if err != nil {
			logger.Warn("archived ballot carries a bad payload",
				zap.Uint64("id", p.ID), zap.Error(err))
			continue
		}
		payloads[p.ID] = payload
	}

	clock := governance.NewManualClock(time.Unix(int64(archived[0].Time), 0))
	token := governance.NewMemoryToken()
	registry := governance.NewContractRegistry()
	engineCfg := governance.Config{
		Params: governance.Params{
			MinimumQuorum:  serviceCfg.MinimumQuorum,
			DebatingPeriod: serviceCfg.DebatingPeriod,
			MinimumVotes:   serviceCfg.MinimumVotes,
		},
		Chairman: common.HexToAddress(serviceCfg.ChairmanAddress),
		Token:    token,
		Executor: registry,
		Clock:    clock,
		Logger:   logger,
	}
	if serviceCfg.ContractAddress != "" {
		engineCfg.SelfAddress = common.HexToAddress(serviceCfg.ContractAddress)
	}
	engine, err := governance.New(engineCfg)
	if err != nil {
		return 0, 0, err
	}

	// Every external ballot target gets a stub that answers success, so a
	// passed ballot replays its execution without the real contract. The
	// engine's own address keeps its real dispatch, self-call ballots have
	// to replay through it.
	for _, p := range proposals {
		target := common.HexToAddress(p.TargetContract)
		if target == engine.Address() {
			continue
		}
		registry.Register(target, func(env *governance.CallEnv, payload []byte) ([]byte, error) {
			return nil, nil
		})
	}

	divergences := 0
	for _, ev := range archived {
		select {
		case <-ctx.Done():
			return divergences, len(archived), ctx.Err()
		default:
		}
		clock.Set(time.Unix(int64(ev.Time), 0))
		if err := applyEvent(engine, token, ev, payloads); err != nil {
			logger.Error("archived event does not replay",
				zap.Uint64("seq", ev.Seq),
				zap.String("type", ev.Type),
				zap.Error(err))
			divergences++
		}
	}

	replayed := engine.Journal().All()
	divergences += compareJournals(logger, archived, replayed)
	divergences += compareProposals(logger, proposals, engine, replayed)

	// The stats document trails the journal by one indexer tick, so this
	// is advisory; the event comparison above is the authoritative check.
	if stored := store.Stats(ctx); stored != nil {
		snapshot := engine.Snapshot()
		stored.UpdateTime = 0
		snapshot.UpdateTime = 0
		if *stored != *snapshot {
			logger.Warn("archived stats do not match the replayed state",
				zap.Any("archived", stored),
				zap.Any("replayed", snapshot))
		}
	}
	return divergences, len(archived), nil
}

// applyEvent feeds one archived event back into the engine as the operation
// that originally produced it.
func applyEvent(engine *governance.Engine, token *governance.MemoryToken, ev *types.Event, payloads map[uint64][]byte) error {
	switch ev.Type {
	case types.EventCredited:
		user := common.HexToAddress(ev.Address)
		token.Mint(user, ev.Amount)
		token.Approve(user, engine.Address(), ev.Amount)
		return engine.Deposit(user, ev.Amount)
	case types.EventTokensWithdrawn:
		return engine.Withdraw(common.HexToAddress(ev.Address), ev.Amount)
	case types.EventTokenReceived:
		return engine.ReceiveEther(common.HexToAddress(ev.Address), ev.Amount)
	case types.EventEthWithdrawn:
		// the journal records the recipient, not the caller; the chairman
		// clears the role check either way
		return engine.WithdrawEther(engine.ChairmanAddress(), common.HexToAddress(ev.Address), ev.Amount)
	case types.EventProposalAdded:
		creator := common.HexToAddress(ev.Address)
		if !engine.HasRole(governance.RoleChairman, creator) {
			// role grants are not journaled, restore the one the
			// original run must have made
			if err := engine.GrantRole(engine.ChairmanAddress(), governance.RoleChairman, creator); err != nil {
				return err
			}
		}
		_, err := engine.AddProposal(creator, common.HexToAddress(ev.Target), payloads[ev.ProposalID], ev.Description)
		return err
	case types.EventVoted:
		return engine.Vote(common.HexToAddress(ev.Address), ev.ProposalID, ev.Support)
	case types.EventFinished:
		return engine.FinishVotes(ev.ProposalID)
	case types.EventFinishedEmergency:
		// emitted inside the finalization of the ballot that called it,
		// replaying that ballot's finished event produces this one too
		return nil
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// compareProposals checks the archived ballot documents, which is what the
// API serves, against the replayed records. Passed lives only in the archive
// and the finished events, so the replayed side fills it in the same way the
// indexer does; the update stamps are not engine state and are ignored.
func compareProposals(logger *zap.Logger, archived []*types.Proposal, engine *governance.Engine, replayed []*types.Event) int {
	divergences := 0
	if uint64(len(archived)) != engine.ProposalCount() {
		logger.Error("archived ballot count differs",
			zap.Int("archived", len(archived)),
			zap.Uint64("replayed", engine.ProposalCount()))
		divergences++
	}
	passed := make(map[uint64]bool)
	for _, ev := range replayed {
		if ev.Type == types.EventFinished {
			passed[ev.ProposalID] = ev.Passed
		}
	}
	for _, doc := range archived {
		a := *doc
		r := engine.Proposal(a.ID)
		r.Passed = passed[a.ID]
		a.UpdateTime, r.UpdateTime = 0, 0
		if a != r {
			logger.Error("archived ballot differs from replay",
				zap.Uint64("id", a.ID),
				zap.Any("archived", &a),
				zap.Any("replayed", &r))
			divergences++
		}
	}
	return divergences
}

// compareJournals walks both streams in step and logs every entry where the
// replay disagrees with the archive.
func compareJournals(logger *zap.Logger, archived, replayed []*types.Event) int {
	divergences := 0
	if len(replayed) != len(archived) {
		logger.Error("replayed event count differs",
			zap.Int("archived", len(archived)),
			zap.Int("replayed", len(replayed)))
		divergences++
	}
	n := len(archived)
	if len(replayed) < n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		if archived[i].Seq != uint64(i) {
			logger.Error("archive has a sequence gap",
				zap.Int("index", i),
				zap.Uint64("seq", archived[i].Seq))
			divergences++
			continue
		}
		a, r := *archived[i], *replayed[i]
		if a.Type == types.EventFinishedEmergency {
			// stamped mid-finalization; the replay clock holds the
			// outer ballot's time for the whole call
			a.Time, r.Time = 0, 0
		}
		if a != r {
			logger.Error("archived event differs from replay",
				zap.Uint64("seq", archived[i].Seq),
				zap.String("type", archived[i].Type),
				zap.Any("archived", archived[i]),
				zap.Any("replayed", replayed[i]))
			divergences++
		}
	}
	return divergences
}
