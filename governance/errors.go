package governance

import "errors"

// Ledger errors
var (
	ErrInsufficientBalance = errors.New("withdraw amount exceeds balance")
	ErrVotePending         = errors.New("voting weight locked until last vote ends")
	ErrInsufficientEther   = errors.New("ether amount exceeds contract balance")
)

// Proposal errors
var (
	ErrNotEnoughRights  = errors.New("caller has no rights for this operation")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrEmptyTarget      = errors.New("proposal target is the zero address")
)

// Voting errors
var (
	ErrNoVotingTokens = errors.New("voter has no deposited tokens")
	ErrVotingFinished = errors.New("voting period has ended")
	ErrAlreadyVoted   = errors.New("voter has already voted on this proposal")
)

// Finalization errors
var (
	ErrVotingNotFinished = errors.New("voting period has not ended")
	ErrAlreadyFinished   = errors.New("proposal already finished")
	ErrExecutionFailed   = errors.New("proposal execution call failed")
	ErrOnlySelfCall      = errors.New("emergency end is reachable only by the contract itself")
	ErrNoCallInFlight    = errors.New("no execution call in flight")
)

// Call and guard errors
var (
	ErrReentrantCall   = errors.New("reentrant call")
	ErrUnknownContract = errors.New("no contract registered at target address")
	ErrUnknownMethod   = errors.New("unknown method selector")
	ErrShortCalldata   = errors.New("calldata too short")
)

// Token ledger errors
var (
	ErrInsufficientTokenBalance = errors.New("token balance too low")
	ErrInsufficientAllowance    = errors.New("token allowance too low")
)
