package types

const (
	defaultLimit = 50
	MaximumLimit = 100
)

type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

func (f *Pagination) Sanitize() {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	} else if f.Limit > MaximumLimit {
		f.Limit = MaximumLimit
	}
}

const (
	ProposalStatusOpen     = "open"
	ProposalStatusFinished = "finished"
)

type ProposalsFilter struct {
	Pagination *Pagination `bson:"-"`

	Status string `bson:"-"`
}

// EventsFilter narrows the archived journal. ProposalID is a pointer since
// id 0 is a valid ballot.
type EventsFilter struct {
	Pagination *Pagination `bson:"-"`

	ProposalID *uint64 `bson:"proposalID,omitempty"`
	Address    string  `bson:"address,omitempty"`
	Type       string  `bson:"type,omitempty"`
}

type ParticipantsFilter struct {
	Pagination *Pagination `bson:"-"`

	ActiveOnly bool `bson:"-"`
}
