// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// Position is the stake record of a single account.
// It is created implicitly on the first stake and persists once written,
// even when the staked amount drops back to zero.
type Position struct {
	Amount    *big.Int // currently staked amount
	StakeTime uint64   // unix seconds of the last stake increase
}

// Encode encodes the position into bytes, nil returned for a blank record.
func (p *Position) Encode() ([]byte, error) {
	if p.Amount.Sign() == 0 && p.StakeTime == 0 {
		// blank position encodes to nil, so the record is removed from storage
		return nil, nil
	}
	return rlp.EncodeToBytes(p)
}

// Decode decodes bytes into the position.
func (p *Position) Decode(data []byte) error {
	if len(data) == 0 {
		*p = Position{&big.Int{}, 0}
		return nil
	}
	return rlp.DecodeBytes(data, p)
}

// Pool is a snapshot of the singleton pool state.
// AccRewardsPerToken is reserved for a globally-accumulated reward-rate model;
// nothing updates it yet and reads report it verbatim.
type Pool struct {
	TotalStaked        *big.Int
	LastUpdateTime     uint64
	AccRewardsPerToken *big.Int
}
