package governance

// Operation names for the reentrancy guard table. Each mutating operation
// holds its own slot, so the emergency path stays reachable from inside a
// finalization call while finishVotes itself is not.
const (
	opDeposit       = "deposit"
	opWithdraw      = "withdraw"
	opAddProposal   = "addProposal"
	opVote          = "vote"
	opFinishVotes   = "finishVotes"
	opEmergencyEnd  = "emergencyEndVotes"
	opReceiveEther  = "receiveEther"
	opWithdrawEther = "withdrawEther"
)

// opGuard tracks which operations are currently on the call stack. It is
// only ever touched with the engine mutex held; reentrancy can therefore
// only happen through the execution call path, on the same goroutine.
type opGuard struct {
	held map[string]bool
}

func newOpGuard() *opGuard {
	return &opGuard{held: make(map[string]bool)}
}

func (g *opGuard) enter(op string) error {
	if g.held[op] {
		return ErrReentrantCall
	}
	g.held[op] = true
	return nil
}

func (g *opGuard) exit(op string) {
	delete(g.held, op)
}
