package types

// GovernanceStats is the aggregate snapshot shown on the dashboard and
// re-derived by the verifier.
type GovernanceStats struct {
	ActiveParticipants uint64 `json:"activeParticipants" bson:"activeParticipants"`
	TotalDeposited     uint64 `json:"totalDeposited" bson:"totalDeposited"`
	ProposalCount      uint64 `json:"proposalCount" bson:"proposalCount"`
	OpenProposals      uint64 `json:"openProposals" bson:"openProposals"`
	EtherBalance       uint64 `json:"etherBalance" bson:"etherBalance"`
	EventCount         uint64 `json:"eventCount" bson:"eventCount"`
	UpdateTime         int64  `json:"updateTime" bson:"updateTime"`
}

// Params echoes the engine configuration through the API.
type Params struct {
	Chairman        string `json:"chairman"`
	ContractAddress string `json:"contractAddress"`
	MinimumQuorum   uint64 `json:"minimumQuorum"`
	DebatingPeriod  int64  `json:"debatingPeriodSeconds"`
	MinimumVotes    uint64 `json:"minimumVotes"`
}
