// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/lineax/stakeline/kv"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/state"
)

var (
	bucketPositions = kv.Bucket("ledger/pos/")

	keyTotalStaked = []byte("ledger/total-stake")
	keyLastUpdate  = []byte("ledger/last-update")
	keyAccRewards  = []byte("ledger/acc-rewards")
)

type Storage struct {
	state *state.State

	totalStaked *state.AmountSlot
	lastUpdate  *state.TimeSlot
	accRewards  *state.AmountSlot
}

func NewStorage(st *state.State) *Storage {
	return &Storage{
		state:       st,
		totalStaked: state.NewAmountSlot(st, keyTotalStaked),
		lastUpdate:  state.NewTimeSlot(st, keyLastUpdate),
		accRewards:  state.NewAmountSlot(st, keyAccRewards),
	}
}

func (s *Storage) getPosition(addr stakeline.Address) (*Position, error) {
	var pos Position
	if err := s.state.DecodeStorage(bucketPositions.MakeKey(addr.Bytes()), pos.Decode); err != nil {
		return nil, errors.Wrap(err, "failed to get stake position")
	}
	return &pos, nil
}

func (s *Storage) setPosition(addr stakeline.Address, pos *Position) error {
	if err := s.state.EncodeStorage(bucketPositions.MakeKey(addr.Bytes()), pos.Encode); err != nil {
		return errors.Wrap(err, "failed to set stake position")
	}
	return nil
}
