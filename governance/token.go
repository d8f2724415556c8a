package governance

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger is the external token contract the engine pulls deposits from
// and pushes withdrawals to. The spender argument names the account the
// transfer runs as; on chain it is the implicit message sender. Moving
// tokens out of the spender's own account needs no allowance, moving them
// out of anyone else's consumes one.
type TokenLedger interface {
	TransferFrom(spender, from, to common.Address, amount uint64) error
}

// MemoryToken is an in-process fungible token ledger for the simulator,
// with ERC20-style balances and allowances.
type MemoryToken struct {
	mu         sync.RWMutex
	balances   map[common.Address]uint64
	allowances map[common.Address]map[common.Address]uint64
}

func NewMemoryToken() *MemoryToken {
	return &MemoryToken{
		balances:   make(map[common.Address]uint64),
		allowances: make(map[common.Address]map[common.Address]uint64),
	}
}

// Mint credits freshly created tokens to an account.
func (t *MemoryToken) Mint(to common.Address, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] += amount
}

// Approve lets spender move up to amount out of owner's account. It
// overwrites any earlier approval.
func (t *MemoryToken) Approve(owner, spender common.Address, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]uint64)
	}
	t.allowances[owner][spender] = amount
}

func (t *MemoryToken) BalanceOf(addr common.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[addr]
}

func (t *MemoryToken) Allowance(owner, spender common.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowances[owner][spender]
}

func (t *MemoryToken) TransferFrom(spender, from, to common.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from] < amount {
		return ErrInsufficientTokenBalance
	}
	if spender != from {
		if t.allowances[from][spender] < amount {
			return ErrInsufficientAllowance
		}
		t.allowances[from][spender] -= amount
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}
