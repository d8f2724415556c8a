package governance

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ContractHandler simulates the code deployed at one address. payload is the
// raw calldata of the incoming call.
type ContractHandler func(env *CallEnv, payload []byte) ([]byte, error)

// CallEnv is the execution context handed to a contract handler.
type CallEnv struct {
	Caller common.Address // message sender of this call
	Self   common.Address // address the handler is registered under

	registry *ContractRegistry
}

// Call forwards a nested call with this contract as the sender, so caller
// identity chains the way message senders do on chain.
func (env *CallEnv) Call(target common.Address, payload []byte) ([]byte, error) {
	return env.registry.Call(env.Self, target, payload)
}

// ContractRegistry stands in for the chain's call mechanism: it dispatches
// execution calls to handlers by address. Calling an address nothing is
// registered under is an error, which is what makes a mistargeted proposal
// execution observable and retryable.
type ContractRegistry struct {
	mu       sync.RWMutex
	handlers map[common.Address]ContractHandler
}

func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{handlers: make(map[common.Address]ContractHandler)}
}

func (r *ContractRegistry) Register(addr common.Address, h ContractHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[addr] = h
}

func (r *ContractRegistry) Call(caller, target common.Address, payload []byte) ([]byte, error) {
	r.mu.RLock()
	h := r.handlers[target]
	r.mu.RUnlock()
	if h == nil {
		return nil, ErrUnknownContract
	}
	env := &CallEnv{
		Caller:   caller,
		Self:     target,
		registry: r,
	}
	return h(env, payload)
}
