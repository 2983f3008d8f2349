// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/genesis"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/token/memtoken"
)

func writeAllocation(t *testing.T, doc string) string {
	path := filepath.Join(t.TempDir(), "allocation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeAllocation(t, `
name: testnet
poolReward: "0x64"
accounts:
  - address: "0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14"
    stake: "1000"
  - address: "0xa3c1d79e4f02541bb05f04f1c3b9d1b7c8e2d690"
    reward: "50"
`)

	alloc, err := genesis.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testnet", alloc.Name)
	assert.Equal(t, big.NewInt(100), alloc.PoolReward.Big())
	require.Len(t, alloc.Accounts, 2)
	assert.Equal(t, "0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14", stakeline.Address(alloc.Accounts[0].Address).String())
	assert.Equal(t, big.NewInt(1000), alloc.Accounts[0].Stake.Big())
	assert.Nil(t, alloc.Accounts[0].Reward)
	assert.Equal(t, big.NewInt(50), alloc.Accounts[1].Reward.Big())
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeAllocation(t, `
name: testnet
accounts:
  - address: "0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14"
    stake: "1000"
    energy: "5"
`)

	_, err := genesis.Load(path)
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no accounts", `name: empty`},
		{"missing address", "accounts:\n  - stake: \"10\""},
		{"no balances", "accounts:\n  - address: \"0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14\""},
		{"negative stake", "accounts:\n  - address: \"0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14\"\n    stake: \"-1\""},
		{"bad address", "accounts:\n  - address: \"0xzz\"\n    stake: \"10\""},
		{"bad amount", "accounts:\n  - address: \"0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14\"\n    stake: \"ten\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := genesis.Load(writeAllocation(t, tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := genesis.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	engine := stakeline.EngineAddress
	stakeToken := memtoken.New(engine)
	rewardToken := memtoken.New(engine)

	alloc := genesis.NewDevnet()
	alloc.Seed(engine, stakeToken, rewardToken)

	want, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	for _, addr := range genesis.DevAccounts() {
		bal, err := stakeToken.BalanceOf(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, want, bal)
	}

	float, err := rewardToken.BalanceOf(context.Background(), engine)
	require.NoError(t, err)
	assert.Equal(t, want, float)
}

func TestDevAccounts(t *testing.T) {
	accs := genesis.DevAccounts()
	assert.Len(t, accs, 10)

	seen := make(map[stakeline.Address]bool)
	for _, addr := range accs {
		assert.False(t, addr.IsZero())
		assert.False(t, seen[addr])
		seen[addr] = true
	}

	// cached between calls
	assert.Equal(t, accs, genesis.DevAccounts())
}
