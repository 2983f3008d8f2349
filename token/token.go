// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token defines the asset transfer port the staking engine settles
// through. The engine never holds balances itself; every stake, withdrawal
// and payout is executed by a Transferor backed by an asset ledger.
package token

import (
	"context"
	"math/big"

	"github.com/lineax/stakeline/stakeline"
)

// Transferor moves asset units between accounts.
//
// A (false, nil) result means the asset ledger refused the transfer, for
// example on insufficient balance. A non-nil error means the transfer failed
// or its outcome is unknown; callers must not assume it settled.
type Transferor interface {
	// MoveFrom pulls amount out of the from account into the to account.
	MoveFrom(ctx context.Context, from, to stakeline.Address, amount *big.Int) (bool, error)

	// MoveTo pays amount from the transferor's own account to the to account.
	MoveTo(ctx context.Context, to stakeline.Address, amount *big.Int) (bool, error)

	// BalanceOf reports the current balance of the account.
	BalanceOf(ctx context.Context, account stakeline.Address) (*big.Int, error)
}
