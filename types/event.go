package types

const (
	EventTokenReceived     = "tokenReceived"
	EventEthWithdrawn      = "ethWithdrawn"
	EventCredited          = "credited"
	EventTokensWithdrawn   = "tokensWithdrawn"
	EventProposalAdded     = "proposalAdded"
	EventVoted             = "voted"
	EventFinishedEmergency = "finishedEmergency"
	EventFinished          = "finished"
)

// Event is one entry of the governance journal. Seq is assigned by the
// journal and is unique and gapless. Which of the optional fields carry data
// depends on Type: Address/Amount for the ledger events, ProposalID and the
// ballot fields for the proposal events.
type Event struct {
	Seq  uint64 `json:"seq" bson:"seq"`
	Type string `json:"type" bson:"type"`
	Time uint64 `json:"time" bson:"time"`

	Address string `json:"address,omitempty" bson:"address,omitempty"`
	Amount  uint64 `json:"amount,omitempty" bson:"amount,omitempty"`

	ProposalID  uint64 `json:"proposalID" bson:"proposalID"`
	Support     bool   `json:"support" bson:"support"`
	Passed      bool   `json:"passed" bson:"passed"`
	Consenting  uint64 `json:"consenting,omitempty" bson:"consenting,omitempty"`
	Dissenters  uint64 `json:"dissenters,omitempty" bson:"dissenters,omitempty"`
	UsersVoted  uint64 `json:"usersVoted,omitempty" bson:"usersVoted,omitempty"`
	Target      string `json:"target,omitempty" bson:"target,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	EndTime     uint64 `json:"endTime,omitempty" bson:"endTime,omitempty"`
}
