// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memtoken provides an in-memory asset ledger. It backs the solo mode
// of the node, where stake and reward assets live in process memory instead
// of an external asset service.
package memtoken

import (
	"context"
	"math/big"
	"sync"

	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/token"
)

var _ token.Transferor = (*Token)(nil)

// Token is a thread-safe in-memory asset ledger. Transfers are refused, not
// errored, when the sender's balance falls short.
type Token struct {
	mu       sync.Mutex
	account  stakeline.Address
	balances map[stakeline.Address]*big.Int
}

// New creates an empty ledger. Payouts via MoveTo are drawn from the given
// account.
func New(account stakeline.Address) *Token {
	return &Token{
		account:  account,
		balances: make(map[stakeline.Address]*big.Int),
	}
}

// Mint credits amount to the account out of thin air.
func (t *Token) Mint(account stakeline.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(account, amount)
}

func (t *Token) credit(account stakeline.Address, amount *big.Int) {
	bal, ok := t.balances[account]
	if !ok {
		bal = new(big.Int)
		t.balances[account] = bal
	}
	bal.Add(bal, amount)
}

func (t *Token) MoveFrom(ctx context.Context, from, to stakeline.Address, amount *big.Int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return false, nil
	}
	bal.Sub(bal, amount)
	t.credit(to, amount)
	return true, nil
}

func (t *Token) MoveTo(ctx context.Context, to stakeline.Address, amount *big.Int) (bool, error) {
	return t.MoveFrom(ctx, t.account, to, amount)
}

func (t *Token) BalanceOf(ctx context.Context, account stakeline.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balances[account]
	if bal == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(bal), nil
}
