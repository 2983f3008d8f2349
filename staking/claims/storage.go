// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claims

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lineax/stakeline/kv"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/state"
)

var bucketClaims = kv.Bucket("claims/")

type Storage struct {
	state *state.State
}

func NewStorage(st *state.State) *Storage {
	return &Storage{state: st}
}

func (s *Storage) getClaimed(addr stakeline.Address) (*big.Int, error) {
	raw, err := s.state.GetRaw(bucketClaims.MakeKey(addr.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claimed rewards")
	}
	return new(big.Int).SetBytes(raw), nil
}

func (s *Storage) setClaimed(addr stakeline.Address, total *big.Int) {
	s.state.SetRaw(bucketClaims.MakeKey(addr.Bytes()), total.Bytes())
}
