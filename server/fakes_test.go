// Package server
package server

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/commondao/governance-backend/types"
)

var (
	errStorageDown = errors.New("storage down")
	errCacheDown   = errors.New("cache down")
	errCacheMiss   = errors.New("cache miss")
)

// fakeStorage is an in-memory Storage for the handler and indexer tests.
// With failing set every call errors, which is how the fallback paths get
// exercised without a dead mongo around.
type fakeStorage struct {
	mu           sync.Mutex
	proposals    map[uint64]*types.Proposal
	participants map[string]*types.Participant
	events       map[uint64]*types.Event
	stats        *types.GovernanceStats

	failing bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		proposals:    make(map[uint64]*types.Proposal),
		participants: make(map[string]*types.Participant),
		events:       make(map[uint64]*types.Event),
	}
}

func (f *fakeStorage) UpsertProposal(ctx context.Context, proposal *types.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStorageDown
	}
	cp := *proposal
	f.proposals[proposal.ID] = &cp
	return nil
}

func (f *fakeStorage) ProposalByID(ctx context.Context, proposalID uint64) (*types.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorageDown
	}
	p, ok := f.proposals[proposalID]
	if !ok {
		return nil, types.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStorage) Proposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, 0, errStorageDown
	}
	var list []*types.Proposal
	for _, p := range f.proposals {
		switch filter.Status {
		case types.ProposalStatusOpen:
			if p.IsFinished {
				continue
			}
		case types.ProposalStatusFinished:
			if !p.IsFinished {
				continue
			}
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	total := uint64(len(list))
	return pageSliceProposals(list, filter.Pagination), total, nil
}

func (f *fakeStorage) UpsertParticipant(ctx context.Context, participant *types.Participant) error {
	return f.UpsertParticipants(ctx, []*types.Participant{participant})
}

func (f *fakeStorage) UpsertParticipants(ctx context.Context, participants []*types.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStorageDown
	}
	for _, p := range participants {
		cp := *p
		f.participants[p.Address] = &cp
	}
	return nil
}

func (f *fakeStorage) ParticipantByAddress(ctx context.Context, address string) (*types.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorageDown
	}
	p, ok := f.participants[address]
	if !ok {
		return nil, types.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStorage) Participants(ctx context.Context, filter *types.ParticipantsFilter) ([]*types.Participant, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, 0, errStorageDown
	}
	var list []*types.Participant
	for _, p := range f.participants {
		if filter.ActiveOnly && p.Balance == 0 {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Balance > list[j].Balance })
	total := uint64(len(list))
	if pag := filter.Pagination; pag != nil {
		if pag.Skip >= len(list) {
			return nil, total, nil
		}
		end := pag.Skip + pag.Limit
		if end > len(list) {
			end = len(list)
		}
		list = list[pag.Skip:end]
	}
	return list, total, nil
}

func (f *fakeStorage) InsertEvents(ctx context.Context, events []*types.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStorageDown
	}
	for _, ev := range events {
		cp := *ev
		f.events[ev.Seq] = &cp
	}
	return nil
}

func (f *fakeStorage) Events(ctx context.Context, filter *types.EventsFilter) ([]*types.Event, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, 0, errStorageDown
	}
	var list []*types.Event
	for _, ev := range f.events {
		if filter.ProposalID != nil && ev.ProposalID != *filter.ProposalID {
			continue
		}
		if filter.Address != "" && ev.Address != filter.Address {
			continue
		}
		if filter.Type != "" && ev.Type != filter.Type {
			continue
		}
		cp := *ev
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seq > list[j].Seq })
	total := uint64(len(list))
	if pag := filter.Pagination; pag != nil {
		if pag.Skip >= len(list) {
			return nil, total, nil
		}
		end := pag.Skip + pag.Limit
		if end > len(list) {
			end = len(list)
		}
		list = list[pag.Skip:end]
	}
	return list, total, nil
}

func (f *fakeStorage) LatestSeq(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errStorageDown
	}
	if len(f.events) == 0 {
		return 0, types.ErrRecordNotFound
	}
	var latest uint64
	for seq := range f.events {
		if seq > latest {
			latest = seq
		}
	}
	return latest, nil
}

func (f *fakeStorage) UpdateStats(ctx context.Context, stats *types.GovernanceStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStorageDown
	}
	cp := *stats
	f.stats = &cp
	return nil
}

func (f *fakeStorage) Stats(ctx context.Context) *types.GovernanceStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing || f.stats == nil {
		return nil
	}
	cp := *f.stats
	return &cp
}

func pageSliceProposals(list []*types.Proposal, pag *types.Pagination) []*types.Proposal {
	if pag == nil {
		return list
	}
	if pag.Skip >= len(list) {
		return nil
	}
	end := pag.Skip + pag.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[pag.Skip:end]
}

// fakeCache is an in-memory cache.Client.
type fakeCache struct {
	mu            sync.Mutex
	proposals     map[uint64]*types.Proposal
	proposalCount uint64
	events        []*types.Event // newest first, like the redis ring
	latestSeq     uint64
	hasSeq        bool
	snapshot      *types.GovernanceStats
	status        *types.ServerStatus

	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{proposals: make(map[uint64]*types.Proposal)}
}

func (f *fakeCache) UpdateProposal(ctx context.Context, proposal *types.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown
	}
	cp := *proposal
	f.proposals[proposal.ID] = &cp
	return nil
}

func (f *fakeCache) ProposalByID(ctx context.Context, proposalID uint64) (*types.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errCacheDown
	}
	p, ok := f.proposals[proposalID]
	if !ok {
		return nil, errCacheMiss
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCache) UpdateProposalCount(ctx context.Context, total uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown
	}
	f.proposalCount = total
	return nil
}

func (f *fakeCache) ProposalCount(ctx context.Context) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proposalCount
}

func (f *fakeCache) PushEvents(ctx context.Context, events []*types.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown
	}
	for _, ev := range events {
		cp := *ev
		f.events = append([]*types.Event{&cp}, f.events...)
	}
	return nil
}

func (f *fakeCache) LatestEvents(ctx context.Context, pagination *types.Pagination) ([]*types.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errCacheDown
	}
	if pagination.Skip >= len(f.events) {
		return nil, errCacheMiss
	}
	end := pagination.Skip + pagination.Limit
	if end > len(f.events) {
		end = len(f.events)
	}
	out := make([]*types.Event, 0, end-pagination.Skip)
	for _, ev := range f.events[pagination.Skip:end] {
		cp := *ev
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCache) LatestSeq(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing || !f.hasSeq {
		return 0, errCacheMiss
	}
	return f.latestSeq, nil
}

func (f *fakeCache) SetLatestSeq(ctx context.Context, seq uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown
	}
	f.latestSeq = seq
	f.hasSeq = true
	return nil
}

func (f *fakeCache) UpdateSnapshot(ctx context.Context, stats *types.GovernanceStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown
	}
	cp := *stats
	f.snapshot = &cp
	return nil
}

func (f *fakeCache) Snapshot(ctx context.Context) (*types.GovernanceStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing || f.snapshot == nil {
		return nil, errCacheMiss
	}
	cp := *f.snapshot
	return &cp, nil
}

func (f *fakeCache) ServerStatus(ctx context.Context) (*types.ServerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing || f.status == nil {
		return nil, errCacheMiss
	}
	cp := *f.status
	return &cp, nil
}

func (f *fakeCache) UpdateServerStatus(ctx context.Context, serverStatus *types.ServerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown
	}
	cp := *serverStatus
	f.status = &cp
	return nil
}
