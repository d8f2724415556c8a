// Package types
package types

// Proposal is the ballot record kept by the governance engine and mirrored
// into storage by the indexer. EndTime is unix seconds. Passed is not part of
// the engine state machine, it is filled from the finished event when the
// record is archived.
type Proposal struct {
	ID             uint64 `json:"id" bson:"id"`
	EndTime        uint64 `json:"endTime" bson:"endTime"`
	Consenting     uint64 `json:"consenting" bson:"consenting"`
	Dissenters     uint64 `json:"dissenters" bson:"dissenters"`
	UsersVoted     uint64 `json:"usersVoted" bson:"usersVoted"`
	TargetContract string `json:"targetContract" bson:"targetContract"`
	IsFinished     bool   `json:"isFinished" bson:"isFinished"`
	Passed         bool   `json:"passed" bson:"passed"`
	EncodedPayload string `json:"encodedPayload" bson:"encodedPayload"`
	Description    string `json:"description" bson:"description"`
	UpdateTime     int64  `json:"updateTime" bson:"updateTime"`
}
