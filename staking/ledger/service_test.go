// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/lvldb"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking/reverts"
	"github.com/lineax/stakeline/state"
	"github.com/lineax/stakeline/test/datagen"
)

func newLedger(t *testing.T) (*Service, *state.State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 128)
	require.NoError(t, err)
	return New(st), st, db
}

func TestBlankPosition(t *testing.T) {
	svc, _, _ := newLedger(t)

	pos, err := svc.Get(datagen.RandAddress())
	assert.NoError(t, err)
	assert.Equal(t, &big.Int{}, pos.Amount)
	assert.Zero(t, pos.StakeTime)

	total, err := svc.Total()
	assert.NoError(t, err)
	assert.Equal(t, new(big.Int), total)
}

func TestIncrease(t *testing.T) {
	svc, _, _ := newLedger(t)
	addr := datagen.RandAddress()

	assert.NoError(t, svc.Increase(addr, big.NewInt(1000), 5))

	pos, _ := svc.Get(addr)
	assert.Equal(t, big.NewInt(1000), pos.Amount)
	assert.Equal(t, uint64(5), pos.StakeTime)

	// a second increase accumulates the amount and resets the timestamp
	assert.NoError(t, svc.Increase(addr, big.NewInt(500), 10))

	pos, _ = svc.Get(addr)
	assert.Equal(t, big.NewInt(1500), pos.Amount)
	assert.Equal(t, uint64(10), pos.StakeTime)

	total, _ := svc.Total()
	assert.Equal(t, big.NewInt(1500), total)
}

func TestIncreaseInvalidAmount(t *testing.T) {
	svc, _, _ := newLedger(t)
	addr := datagen.RandAddress()

	assert.Equal(t, reverts.ErrInvalidAmount, svc.Increase(addr, big.NewInt(0), 1))
	assert.Equal(t, reverts.ErrInvalidAmount, svc.Increase(addr, big.NewInt(-5), 1))

	pos, _ := svc.Get(addr)
	assert.Equal(t, &big.Int{}, pos.Amount)
}

func TestDecrease(t *testing.T) {
	svc, _, _ := newLedger(t)
	addr := datagen.RandAddress()

	require.NoError(t, svc.Increase(addr, big.NewInt(1000), 5))
	assert.NoError(t, svc.Decrease(addr, big.NewInt(400)))

	pos, _ := svc.Get(addr)
	assert.Equal(t, big.NewInt(600), pos.Amount)
	assert.Equal(t, uint64(5), pos.StakeTime, "decrease must not touch the stake timestamp")

	total, _ := svc.Total()
	assert.Equal(t, big.NewInt(600), total)

	// draining to zero keeps the record, with its timestamp
	assert.NoError(t, svc.Decrease(addr, big.NewInt(600)))
	pos, _ = svc.Get(addr)
	assert.Equal(t, &big.Int{}, pos.Amount)
	assert.Equal(t, uint64(5), pos.StakeTime)
}

func TestDecreaseInsufficient(t *testing.T) {
	svc, _, _ := newLedger(t)
	addr := datagen.RandAddress()

	require.NoError(t, svc.Increase(addr, big.NewInt(100), 1))

	err := svc.Decrease(addr, big.NewInt(101))
	assert.Equal(t, reverts.ErrInsufficientStake, err)
	assert.True(t, reverts.IsRevertErr(err))

	// nothing changed
	pos, _ := svc.Get(addr)
	assert.Equal(t, big.NewInt(100), pos.Amount)
	total, _ := svc.Total()
	assert.Equal(t, big.NewInt(100), total)
}

func TestTotalConservation(t *testing.T) {
	svc, _, _ := newLedger(t)

	addrs := []stakeline.Address{datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()}
	amounts := []*big.Int{big.NewInt(100), big.NewInt(250), big.NewInt(3000)}

	for i, addr := range addrs {
		require.NoError(t, svc.Increase(addr, amounts[i], uint64(i)))
	}
	require.NoError(t, svc.Decrease(addrs[1], big.NewInt(50)))

	sum := new(big.Int)
	for _, addr := range addrs {
		pos, err := svc.Get(addr)
		require.NoError(t, err)
		sum.Add(sum, pos.Amount)
	}

	total, err := svc.Total()
	assert.NoError(t, err)
	assert.Equal(t, sum, total)
}

func TestTouch(t *testing.T) {
	svc, _, _ := newLedger(t)

	last, err := svc.LastUpdate()
	assert.NoError(t, err)
	assert.Zero(t, last)

	assert.NoError(t, svc.Touch(100))
	last, _ = svc.LastUpdate()
	assert.Equal(t, uint64(100), last)

	// idempotent within the same timestamp
	assert.NoError(t, svc.Touch(100))
	last, _ = svc.LastUpdate()
	assert.Equal(t, uint64(100), last)

	// never moves backwards
	assert.NoError(t, svc.Touch(50))
	last, _ = svc.LastUpdate()
	assert.Equal(t, uint64(100), last)
}

func TestPoolSnapshot(t *testing.T) {
	svc, _, _ := newLedger(t)
	addr := datagen.RandAddress()

	require.NoError(t, svc.Increase(addr, big.NewInt(777), 9))
	require.NoError(t, svc.Touch(9))

	pool, err := svc.Pool()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(777), pool.TotalStaked)
	assert.Equal(t, uint64(9), pool.LastUpdateTime)
	assert.Equal(t, new(big.Int), pool.AccRewardsPerToken, "reserved accumulator stays untouched")
}

func TestPositionPersistence(t *testing.T) {
	svc, st, db := newLedger(t)
	addr := datagen.RandAddress()

	require.NoError(t, svc.Increase(addr, big.NewInt(123), 7))
	require.NoError(t, svc.Decrease(addr, big.NewInt(123)))
	require.NoError(t, svc.Touch(7))
	require.NoError(t, st.Commit())

	st2, err := state.New(db, 128)
	require.NoError(t, err)
	svc2 := New(st2)

	// the drained position survives the reload with its timestamp
	pos, err := svc2.Get(addr)
	assert.NoError(t, err)
	assert.Equal(t, &big.Int{}, pos.Amount)
	assert.Equal(t, uint64(7), pos.StakeTime)

	last, _ := svc2.LastUpdate()
	assert.Equal(t, uint64(7), last)
}
