// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand/v2"
)

// RandAmount returns a random positive token amount, within one token's
// 18 decimals.
func RandAmount() *big.Int {
	return new(big.Int).SetUint64(mathrand.Uint64()%1e18 + 1) //#nosec G404
}
