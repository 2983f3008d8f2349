// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards computes time-based staking rewards and keeps the pool
// accounting current. Rewards accrue linearly on a position's amount from its
// stake timestamp, at a flat annual percentage rate. Integer division
// truncates at each step, so partial units round down in the pool's favor.
package rewards

import (
	"math/big"

	"github.com/lineax/stakeline/staking/ledger"
)

var big100 = big.NewInt(100)

type Service struct {
	ledger         *ledger.Service
	baseAPY        uint64
	secondsPerYear uint64
}

func New(ledger *ledger.Service, baseAPY, secondsPerYear uint64) *Service {
	return &Service{ledger, baseAPY, secondsPerYear}
}

func (s *Service) BaseAPY() uint64 { return s.baseAPY }

func (s *Service) SecondsPerYear() uint64 { return s.secondsPerYear }

// Reconcile refreshes pool bookkeeping up to now. It is idempotent and
// ignores timestamps older than the last refresh.
func (s *Service) Reconcile(now uint64) error {
	return s.ledger.Touch(now)
}

// Accrued returns the rewards earned by pos from its stake timestamp to now.
//
// The annual reward is computed first and truncated, then scaled by elapsed
// time and truncated again:
//
//	annual  = amount * baseAPY / 100
//	accrued = annual * (now - stakeTime) / secondsPerYear
func (s *Service) Accrued(pos *ledger.Position, now uint64) *big.Int {
	if pos.Amount.Sign() == 0 {
		return &big.Int{}
	}
	if now <= pos.StakeTime {
		return &big.Int{}
	}
	elapsed := now - pos.StakeTime

	x := new(big.Int).SetUint64(s.baseAPY)
	x.Mul(x, pos.Amount)
	x.Div(x, big100)

	x.Mul(x, new(big.Int).SetUint64(elapsed))
	return x.Div(x, new(big.Int).SetUint64(s.secondsPerYear))
}

// Pending returns the not-yet-claimed part of the accrued rewards,
// never negative.
func (s *Service) Pending(pos *ledger.Position, claimed *big.Int, now uint64) *big.Int {
	pending := s.Accrued(pos, now)
	pending.Sub(pending, claimed)
	if pending.Sign() < 0 {
		return &big.Int{}
	}
	return pending
}
