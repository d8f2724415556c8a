/*
 *  Copyright 2021 CommonDAO
 *  This file is part of the governance-backend library.
 *
 *  The governance-backend library is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  The governance-backend library is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 *  GNU Lesser General Public License for more details.
 *
 *  You should have received a copy of the GNU Lesser General Public License
 *  along with the governance-backend library. If not, see <http://www.gnu.org/licenses/>.
 */

// Package governance holds the deterministic replica of the on-chain voting
// contract: token-weighted deposits, chairman proposals, time-boxed ballots
// and quorum finalization with an execution call. One mutex serializes all
// mutating operations, so the engine behaves like the single-threaded
// contract it mirrors, while per-operation guards keep the execution call
// from re-entering the operation that issued it.
package governance

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

type userRecord struct {
	balance         uint64
	lastVoteEndTime uint64
	votedOrder      []uint64
	voted           map[uint64]struct{}
}

type proposalRecord struct {
	id          uint64
	endTime     uint64
	consenting  uint64
	dissenters  uint64
	usersVoted  uint64
	target      common.Address
	finished    bool
	payload     []byte
	description string
}

type Engine struct {
	mu sync.RWMutex

	params   Params
	self     common.Address
	chairman common.Address

	token TokenLedger
	exec  *ContractRegistry
	roles *RoleRegistry
	clock Clock
	lgr   *zap.Logger

	users          map[common.Address]*userRecord
	activeUsers    uint64
	totalDeposited uint64
	etherBalance   uint64

	// index in the slice is the ballot id, so the next-id counter and the
	// created-count are the same number
	proposals []*proposalRecord

	guards  *opGuard
	inCall  int32
	journal *Journal
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Token == nil {
		return nil, errors.New("token ledger is required")
	}
	if cfg.Chairman == (common.Address{}) {
		return nil, errors.New("chairman address is required")
	}

	self := cfg.SelfAddress
	if self == (common.Address{}) {
		self = crypto.CreateAddress(cfg.Chairman, 0)
	}
	exec := cfg.Executor
	if exec == nil {
		exec = NewContractRegistry()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	lgr := cfg.Logger
	if lgr == nil {
		lgr = zap.NewNop()
	}

	e := &Engine{
		params:   cfg.Params,
		self:     self,
		chairman: cfg.Chairman,
		token:    cfg.Token,
		exec:     exec,
		roles:    NewRoleRegistry(),
		clock:    clock,
		lgr:      lgr,
		users:    make(map[common.Address]*userRecord),
		guards:   newOpGuard(),
		journal:  NewJournal(),
	}
	e.roles.Grant(RoleChairman, cfg.Chairman)
	exec.Register(self, e.handleCall)

	lgr.Info("governance engine created",
		zap.String("address", self.Hex()),
		zap.String("chairman", cfg.Chairman.Hex()),
		zap.Uint64("minimumQuorum", cfg.Params.MinimumQuorum),
		zap.Duration("debatingPeriod", cfg.Params.DebatingPeriod),
		zap.Uint64("minimumVotes", cfg.Params.MinimumVotes))
	return e, nil
}

func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().Unix())
}

func (e *Engine) publish(ev *types.Event) {
	ev.Time = e.now()
	e.journal.append(ev)
}

func (e *Engine) user(addr common.Address) *userRecord {
	u := e.users[addr]
	if u == nil {
		u = &userRecord{voted: make(map[uint64]struct{})}
		e.users[addr] = u
	}
	return u
}

// Deposit pulls amount from the user's token account into the engine and
// credits it as voting weight. The active-participant counter moves up on
// every successful deposit, not only the first one per account; only a
// withdrawal down to zero moves it back.
func (e *Engine) Deposit(user common.Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deposit(user, amount)
}

func (e *Engine) deposit(user common.Address, amount uint64) error {
	if err := e.guards.enter(opDeposit); err != nil {
		return err
	}
	defer e.guards.exit(opDeposit)

	if err := e.token.TransferFrom(e.self, user, e.self, amount); err != nil {
		return err
	}
	u := e.user(user)
	u.balance += amount
	e.totalDeposited += amount
	e.activeUsers++
	e.publish(&types.Event{
		Type:    types.EventCredited,
		Address: user.Hex(),
		Amount:  amount,
	})
	return nil
}

// Withdraw pushes amount back to the user's token account. It is rejected
// while the account's last vote is still inside its ballot window.
func (e *Engine) Withdraw(user common.Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.withdraw(user, amount)
}

func (e *Engine) withdraw(user common.Address, amount uint64) error {
	if err := e.guards.enter(opWithdraw); err != nil {
		return err
	}
	defer e.guards.exit(opWithdraw)

	u := e.users[user]
	var balance, lastEnd uint64
	if u != nil {
		balance, lastEnd = u.balance, u.lastVoteEndTime
	}
	if lastEnd > e.now() {
		return ErrVotePending
	}
	if amount > balance {
		return ErrInsufficientBalance
	}
	if err := e.token.TransferFrom(e.self, e.self, user, amount); err != nil {
		return err
	}
	if u != nil {
		u.balance -= amount
		e.totalDeposited -= amount
		if u.balance == 0 && amount > 0 {
			e.activeUsers--
		}
	}
	e.publish(&types.Event{
		Type:    types.EventTokensWithdrawn,
		Address: user.Hex(),
		Amount:  amount,
	})
	return nil
}

// ReceiveEther books an ether transfer into the contract balance.
func (e *Engine) ReceiveEther(from common.Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.receiveEther(from, amount)
}

func (e *Engine) receiveEther(from common.Address, amount uint64) error {
	if err := e.guards.enter(opReceiveEther); err != nil {
		return err
	}
	defer e.guards.exit(opReceiveEther)

	e.etherBalance += amount
	e.publish(&types.Event{
		Type:    types.EventTokenReceived,
		Address: from.Hex(),
		Amount:  amount,
	})
	return nil
}

// WithdrawEther releases ether from the contract balance to a recipient.
// Chairman only.
func (e *Engine) WithdrawEther(caller, to common.Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.withdrawEther(caller, to, amount)
}

func (e *Engine) withdrawEther(caller, to common.Address, amount uint64) error {
	if err := e.guards.enter(opWithdrawEther); err != nil {
		return err
	}
	defer e.guards.exit(opWithdrawEther)

	if !e.roles.Has(RoleChairman, caller) {
		return ErrNotEnoughRights
	}
	if amount > e.etherBalance {
		return ErrInsufficientEther
	}
	e.etherBalance -= amount
	e.publish(&types.Event{
		Type:    types.EventEthWithdrawn,
		Address: to.Hex(),
		Amount:  amount,
	})
	return nil
}

// GrantRole hands a role to an address. Chairman only.
func (e *Engine) GrantRole(caller common.Address, role Role, addr common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roles.Has(RoleChairman, caller) {
		return ErrNotEnoughRights
	}
	e.roles.Grant(role, addr)
	return nil
}

// RevokeRole removes a role grant. Chairman only.
func (e *Engine) RevokeRole(caller common.Address, role Role, addr common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roles.Has(RoleChairman, caller) {
		return ErrNotEnoughRights
	}
	e.roles.Revoke(role, addr)
	return nil
}

func (e *Engine) debatingPeriodSeconds() uint64 {
	return uint64(e.params.DebatingPeriod / time.Second)
}
