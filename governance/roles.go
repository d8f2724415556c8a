package governance

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type Role string

const (
	// RoleChairman may create proposals and move the ether ledger.
	RoleChairman Role = "chairman"
)

// RoleRegistry tracks which addresses hold which role. The configured
// chairman is granted at engine construction; further grants go through
// the engine so they stay chairman-administered.
type RoleRegistry struct {
	mu     sync.RWMutex
	grants map[Role]map[common.Address]struct{}
}

func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{grants: make(map[Role]map[common.Address]struct{})}
}

func (r *RoleRegistry) Grant(role Role, addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grants[role] == nil {
		r.grants[role] = make(map[common.Address]struct{})
	}
	r.grants[role][addr] = struct{}{}
}

func (r *RoleRegistry) Revoke(role Role, addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants[role], addr)
}

func (r *RoleRegistry) Has(role Role, addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grants[role][addr]
	return ok
}
