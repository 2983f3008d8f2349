// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/api"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/lvldb"
	"github.com/lineax/stakeline/staking"
	"github.com/lineax/stakeline/state"
	"github.com/lineax/stakeline/test/datagen"
	"github.com/lineax/stakeline/token/memtoken"
)

type fakeClock struct {
	now uint64
}

func (c *fakeClock) Now() uint64 { return c.now }

type testEnv struct {
	ts     *httptest.Server
	client *Client
	stake  *memtoken.Token
	reward *memtoken.Token
	clock  *fakeClock
}

// initAPIServer runs the full REST stack over an in-memory node and points a
// client at it.
func initAPIServer(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 128)
	require.NoError(t, err)

	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	pool := datagen.RandAddress()
	stake := memtoken.New(pool)
	reward := memtoken.New(pool)
	// fund the payout escrow so claims settle
	reward.Mint(pool, big.NewInt(1_000_000))
	clock := &fakeClock{now: 1000}

	config := staking.Config{
		BaseAPY:          10,
		SecondsPerYear:   1000,
		RewardsPrecision: big.NewInt(1e12),
	}
	engine := staking.New(pool, st, config, stake, reward, events, clock)

	handler, closeAPI := api.New(engine, events, api.Options{
		AllowedOrigins: "*",
		EventsLimit:    50,
	})
	t.Cleanup(closeAPI)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:     ts,
		client: New(ts.URL),
		stake:  stake,
		reward: reward,
		clock:  clock,
	}
}

func TestStakeWithdrawClaim(t *testing.T) {
	env := initAPIServer(t)
	alice := datagen.RandAddress()
	env.stake.Mint(alice, big.NewInt(5000))

	require.NoError(t, env.client.Stake(alice, big.NewInt(1000)))

	// a full fake year at 10% accrues a tenth of the stake
	env.clock.now += 1000

	acc, err := env.client.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, math.HexOrDecimal256(*big.NewInt(1000)), acc.Staked)
	assert.Equal(t, uint64(1000), acc.StakeTimestamp)
	assert.Equal(t, math.HexOrDecimal256(*big.NewInt(100)), acc.PendingRewards)

	paid, err := env.client.ClaimRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), paid)

	require.NoError(t, env.client.Withdraw(alice, big.NewInt(400)))

	acc, err = env.client.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, math.HexOrDecimal256(*big.NewInt(600)), acc.Staked)
	assert.Equal(t, math.HexOrDecimal256(*big.NewInt(100)), acc.Claimed)
}

func TestPool(t *testing.T) {
	env := initAPIServer(t)
	alice := datagen.RandAddress()
	env.stake.Mint(alice, big.NewInt(5000))

	require.NoError(t, env.client.Stake(alice, big.NewInt(1500)))

	pool, err := env.client.Pool()
	require.NoError(t, err)
	assert.Equal(t, math.HexOrDecimal256(*big.NewInt(1500)), pool.TotalStaked)
	assert.Equal(t, uint64(1000), pool.LastUpdateTimestamp)
	assert.Equal(t, uint64(10), pool.BaseAPY)
}

func TestBalance(t *testing.T) {
	env := initAPIServer(t)
	alice := datagen.RandAddress()
	env.stake.Mint(alice, big.NewInt(777))
	env.reward.Mint(alice, big.NewInt(33))

	balance, err := env.client.Balance(alice, staking.AssetReward)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(33), balance)

	// stake asset is the default
	balance, err = env.client.Balance(alice, "")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(777), balance)
}

func TestEvents(t *testing.T) {
	env := initAPIServer(t)
	alice := datagen.RandAddress()
	bob := datagen.RandAddress()
	env.stake.Mint(alice, big.NewInt(5000))
	env.stake.Mint(bob, big.NewInt(5000))

	require.NoError(t, env.client.Stake(alice, big.NewInt(100)))
	require.NoError(t, env.client.Stake(bob, big.NewInt(200)))
	require.NoError(t, env.client.Withdraw(alice, big.NewInt(30)))

	all, err := env.client.Events(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(1), all[0].Sequence)
	assert.Equal(t, eventdb.Staked, all[0].Kind)

	withdrawn, err := env.client.Events(&EventsQuery{Kind: eventdb.Withdrawn})
	require.NoError(t, err)
	require.Len(t, withdrawn, 1)
	assert.Equal(t, alice, withdrawn[0].Account)
	assert.Equal(t, big.NewInt(30), (*big.Int)(withdrawn[0].Amount))

	bobs, err := env.client.Events(&EventsQuery{Account: &bob})
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, eventdb.Staked, bobs[0].Kind)

	newest, err := env.client.Events(&EventsQuery{Order: eventdb.DESC, Limit: 1})
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, uint64(3), newest[0].Sequence)
}

func TestErrors(t *testing.T) {
	env := initAPIServer(t)
	alice := datagen.RandAddress()

	// refused settlements carry the status and body in the error
	err := env.client.Stake(alice, big.NewInt(50))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNot200Status)
	assert.Contains(t, err.Error(), "transfer failed")

	// nothing accrued yet
	_, err = env.client.ClaimRewards(alice)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNot200Status)
	assert.Contains(t, err.Error(), "nothing to claim")

	// nil amount is rejected as bad input
	err = env.client.Stake(alice, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNot200Status)
	assert.Contains(t, err.Error(), "Status Code 400")

	// a missing route is reported as not found
	_, err = env.client.httpGET(env.ts.URL + "/staking/nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// a dead node surfaces the transport error untagged
	dead := New("http://127.0.0.1:1")
	err = dead.Stake(alice, big.NewInt(1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNot200Status)
	assert.NotErrorIs(t, err, ErrNotFound)
}
