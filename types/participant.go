package types

// Participant is a depositor account. Balance is the voting weight pulled in
// from the token ledger. LastVoteEndTime carries the end time of the most
// recent ballot the account voted on and gates withdrawals until it passes.
type Participant struct {
	Address         string   `json:"address" bson:"address"`
	Balance         uint64   `json:"balance" bson:"balance"`
	LastVoteEndTime uint64   `json:"lastVoteEndTime" bson:"lastVoteEndTime"`
	VotedProposals  []uint64 `json:"votedProposals" bson:"votedProposals"`
	UpdateTime      int64    `json:"updateTime" bson:"updateTime"`
}
