// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakeline

import "math/big"

// Constants of the staking ledger.
const (
	// SecondsPerYear is the accrual year length, in seconds.
	SecondsPerYear uint64 = 365 * 24 * 60 * 60 // 31,536,000

	// InitialBaseAPY annual reward rate, in whole percent of the staked amount.
	InitialBaseAPY uint64 = 10
)

var (
	// InitialRewardsPrecision scale factor reserved for the accumulated
	// per-token reward rate. The current accrual model never consumes it;
	// it is carried so a global-rate model can be introduced without a
	// ledger migration.
	InitialRewardsPrecision = big.NewInt(1e12)

	// EngineAddress is the default account the engine escrows stakes under
	// and pays rewards from, derived from its ASCII name the way a built-in
	// contract address would be.
	EngineAddress = BytesToAddress([]byte("Engine"))
)
