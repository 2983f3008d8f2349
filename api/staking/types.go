// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking"
)

// StakeRequest is the body of POST /staking/stakes and
// POST /staking/withdrawals.
type StakeRequest struct {
	Caller stakeline.Address     `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ClaimRequest is the body of POST /staking/claims.
type ClaimRequest struct {
	Caller stakeline.Address `json:"caller"`
}

// ClaimResult reports the amount a claim paid out.
type ClaimResult struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Account is the staking state of a single account.
type Account struct {
	Staked         math.HexOrDecimal256 `json:"staked"`
	StakeTimestamp uint64               `json:"stakeTimestamp"`
	PendingRewards math.HexOrDecimal256 `json:"pendingRewards"`
	Claimed        math.HexOrDecimal256 `json:"claimed"`
}

// Pool is the pool-wide staking state.
type Pool struct {
	TotalStaked                math.HexOrDecimal256 `json:"totalStaked"`
	LastUpdateTimestamp        uint64               `json:"lastUpdateTimestamp"`
	AccumulatedRewardsPerToken math.HexOrDecimal256 `json:"accumulatedRewardsPerToken"`
	BaseAPY                    uint64               `json:"baseApy"`
}

// Balance is an account balance read through one of the asset backends.
type Balance struct {
	Balance math.HexOrDecimal256 `json:"balance"`
}

func convertAccount(acc *staking.AccountStatus) *Account {
	return &Account{
		Staked:         math.HexOrDecimal256(*acc.Staked),
		StakeTimestamp: acc.StakeTime,
		PendingRewards: math.HexOrDecimal256(*acc.Pending),
		Claimed:        math.HexOrDecimal256(*acc.Claimed),
	}
}

func convertPool(status *staking.Status) *Pool {
	return &Pool{
		TotalStaked:                math.HexOrDecimal256(*status.TotalStaked),
		LastUpdateTimestamp:        status.LastUpdateTime,
		AccumulatedRewardsPerToken: math.HexOrDecimal256(*status.AccRewardsPerToken),
		BaseAPY:                    status.BaseAPY,
	}
}

func amountOrNil(a *math.HexOrDecimal256) *big.Int {
	if a == nil {
		return nil
	}
	return (*big.Int)(a)
}
