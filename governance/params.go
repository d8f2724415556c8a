package governance

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Params are the voting rules fixed at construction.
type Params struct {
	// MinimumQuorum is the percentage (0-100) of active participants that
	// must have voted before a ballot can pass.
	MinimumQuorum uint64
	// DebatingPeriod is how long a ballot accepts votes, counted from its
	// creation.
	DebatingPeriod time.Duration
	// MinimumVotes is the least combined voting weight, consenting plus
	// dissenting, a passing ballot must have attracted.
	MinimumVotes uint64
}

func (p Params) Validate() error {
	if p.MinimumQuorum > 100 {
		return errors.New("minimum quorum is a percentage, 0 to 100")
	}
	if p.DebatingPeriod <= 0 {
		return errors.New("debating period must be positive")
	}
	return nil
}

type Config struct {
	Params   Params
	Chairman common.Address

	// SelfAddress is the engine's own contract address, the identity the
	// emergency path checks callers against. When zero it is derived the
	// way a deployment would assign it, from the chairman account at
	// nonce zero.
	SelfAddress common.Address

	// Token is required; deposits pull from it and withdrawals push back.
	Token TokenLedger

	// Executor receives finalization calls. A fresh registry is created
	// when nil. The engine registers its own handler on it either way.
	Executor *ContractRegistry

	Clock  Clock
	Logger *zap.Logger
}
