package governance

import (
	"sync"

	"github.com/commondao/governance-backend/types"
)

// Journal is the append-only event log of one engine. Sequence numbers are
// assigned on append, start at 0 and never gap, so a consumer can resume
// from the last sequence it persisted and a verifier can replay the whole
// stream in order.
type Journal struct {
	mu     sync.RWMutex
	events []*types.Event
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) append(ev *types.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	ev.Seq = uint64(len(j.events))
	j.events = append(j.events, ev)
}

// Since returns copies of all events with sequence >= seq.
func (j *Journal) Since(seq uint64) []*types.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if seq >= uint64(len(j.events)) {
		return nil
	}
	out := make([]*types.Event, 0, uint64(len(j.events))-seq)
	for _, ev := range j.events[seq:] {
		cp := *ev
		out = append(out, &cp)
	}
	return out
}

func (j *Journal) Len() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return uint64(len(j.events))
}

// All is Since(0).
func (j *Journal) All() []*types.Event {
	return j.Since(0)
}
