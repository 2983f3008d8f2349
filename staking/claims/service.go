// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package claims tracks lifetime reward payouts per account. Recorded totals
// only ever grow; the claimable remainder is always derived elsewhere as
// accrued minus claimed.
package claims

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

// Claimed returns the lifetime amount of rewards paid out to the account.
func (s *Service) Claimed(addr stakeline.Address) (*big.Int, error) {
	return s.storage.getClaimed(addr)
}

// Record adds amount to the account's lifetime payout total.
func (s *Service) Record(addr stakeline.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}

	claimed, err := s.storage.getClaimed(addr)
	if err != nil {
		return err
	}
	s.storage.setClaimed(addr, claimed.Add(claimed, amount))
	return nil
}
