// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger owns the per-account stake positions and the singleton pool
// state. The pool total always equals the sum of all position amounts; every
// mutation here keeps both sides of that equation in one journaled write set.
package ledger

import (
	"math/big"

	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking/reverts"
	"github.com/lineax/stakeline/state"
)

type Service struct {
	storage *Storage
}

func New(st *state.State) *Service {
	return &Service{
		storage: NewStorage(st),
	}
}

// Get returns the stake position of the given account.
// Accounts that never staked read as a blank position.
func (s *Service) Get(addr stakeline.Address) (*Position, error) {
	return s.storage.getPosition(addr)
}

// Increase adds amount to the account's stake and the pool total, and resets
// the account's stake timestamp to now.
//
// Resetting the timestamp discards the unclaimed accrual of the previous
// window. Settling that accrual first is the caller's job; this service
// deliberately does not do it.
func (s *Service) Increase(addr stakeline.Address, amount *big.Int, now uint64) error {
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}

	pos, err := s.storage.getPosition(addr)
	if err != nil {
		return err
	}
	pos.Amount = new(big.Int).Add(pos.Amount, amount)
	pos.StakeTime = now

	if err := s.storage.setPosition(addr, pos); err != nil {
		return err
	}
	return s.storage.totalStaked.Add(amount)
}

// Decrease subtracts amount from the account's stake and the pool total.
// The stake timestamp is left untouched, so reward accrual of the current
// window keeps running against the reduced amount.
func (s *Service) Decrease(addr stakeline.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}

	pos, err := s.storage.getPosition(addr)
	if err != nil {
		return err
	}
	if amount.Cmp(pos.Amount) > 0 {
		return reverts.ErrInsufficientStake
	}
	pos.Amount = new(big.Int).Sub(pos.Amount, amount)

	if err := s.storage.setPosition(addr, pos); err != nil {
		return err
	}
	return s.storage.totalStaked.Sub(amount)
}

// Total returns the pool-wide staked amount.
func (s *Service) Total() (*big.Int, error) {
	return s.storage.totalStaked.Get()
}

// LastUpdate returns the pool's last reconcile timestamp.
func (s *Service) LastUpdate() (uint64, error) {
	return s.storage.lastUpdate.Get()
}

// Touch advances the pool's last reconcile timestamp to now.
// It never moves the timestamp backwards and is idempotent within the same
// timestamp.
func (s *Service) Touch(now uint64) error {
	last, err := s.storage.lastUpdate.Get()
	if err != nil {
		return err
	}
	if now > last {
		s.storage.lastUpdate.Set(now)
	}
	return nil
}

// Pool returns a snapshot of the singleton pool state.
func (s *Service) Pool() (*Pool, error) {
	total, err := s.storage.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	last, err := s.storage.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	acc, err := s.storage.accRewards.Get()
	if err != nil {
		return nil, err
	}
	return &Pool{
		TotalStaked:        total,
		LastUpdateTime:     last,
		AccRewardsPerToken: acc,
	}, nil
}
