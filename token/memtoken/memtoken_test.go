// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memtoken

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/test/datagen"
)

func TestMoveFrom(t *testing.T) {
	ctx := context.Background()
	pool := datagen.RandAddress()
	alice := datagen.RandAddress()

	tok := New(pool)
	tok.Mint(alice, big.NewInt(100))

	ok, err := tok.MoveFrom(ctx, alice, pool, big.NewInt(60))
	assert.NoError(t, err)
	assert.True(t, ok)

	aliceBal, _ := tok.BalanceOf(ctx, alice)
	poolBal, _ := tok.BalanceOf(ctx, pool)
	assert.Equal(t, big.NewInt(40), aliceBal)
	assert.Equal(t, big.NewInt(60), poolBal)
}

func TestMoveFromRefused(t *testing.T) {
	ctx := context.Background()
	pool := datagen.RandAddress()
	alice := datagen.RandAddress()

	tok := New(pool)
	tok.Mint(alice, big.NewInt(10))

	ok, err := tok.MoveFrom(ctx, alice, pool, big.NewInt(11))
	assert.NoError(t, err)
	assert.False(t, ok)

	// refusal leaves balances untouched
	aliceBal, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, big.NewInt(10), aliceBal)
}

func TestMoveTo(t *testing.T) {
	ctx := context.Background()
	pool := datagen.RandAddress()
	alice := datagen.RandAddress()

	tok := New(pool)
	tok.Mint(pool, big.NewInt(500))

	ok, err := tok.MoveTo(ctx, alice, big.NewInt(200))
	assert.NoError(t, err)
	assert.True(t, ok)

	aliceBal, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, big.NewInt(200), aliceBal)

	// an empty treasury refuses payouts
	ok, err = tok.MoveTo(ctx, alice, big.NewInt(301))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCanceledContext(t *testing.T) {
	pool := datagen.RandAddress()
	alice := datagen.RandAddress()

	tok := New(pool)
	tok.Mint(alice, big.NewInt(100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := tok.MoveFrom(ctx, alice, pool, big.NewInt(1))
	require.Error(t, err)
	assert.False(t, ok)

	_, err = tok.BalanceOf(ctx, alice)
	assert.Error(t, err)
}

func TestBalanceOfIsolated(t *testing.T) {
	ctx := context.Background()
	alice := datagen.RandAddress()

	tok := New(datagen.RandAddress())
	tok.Mint(alice, big.NewInt(5))

	bal, err := tok.BalanceOf(ctx, alice)
	require.NoError(t, err)
	bal.SetInt64(999)

	fresh, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, big.NewInt(5), fresh, "returned balances must be copies")
}
