// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lineax/stakeline/stakeline"
)

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []stakeline.Address {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]stakeline.Address)
	}

	var accs []stakeline.Address
	addresses := []string{
		"0x376a1e4e9d2dd843cbe1829118b7f6e795cb6c14",
		"0xa3c1d79e4f02541bb05f04f1c3b9d1b7c8e2d690",
		"0x51f25dd3cb0dbf9a1dedbf54fa739c5ff15dea6f",
		"0x0bd7b06debdd71a2e8a343cfbedeb8bf42cf8fc5",
		"0xe1b6723a885ec9adcbc5f83df5592ae3cbe67b52",
		"0x9c1e2f60da57b2d9470e5c0d3aa6587a6646ed86",
		"0x742d89bd464f1dc1e8dc6b1fd084729ecdd49b3f",
		"0x41f1a0e56a3f29d13c38e9c2eccb5e1f873ae675",
		"0x2ec442a737cd55a60a9dc17e571a101b1c148d5a",
		"0xdb2b9f972d16bbe36fd0e5e4c879b3fd08b1e8c4",
	}
	for _, str := range addresses {
		accs = append(accs, stakeline.MustParseAddress(str))
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet creates the built-in allocation for solo mode. Every dev account
// gets a fat stake balance and the engine account a matching reward float.
func NewDevnet() *Allocation {
	bal, _ := math.ParseBig256("1000000000000000000000000000")
	float := Amount(*bal)

	var accounts []Account
	for _, addr := range DevAccounts() {
		stake := Amount(*bal)
		accounts = append(accounts, Account{
			Address: Address(addr),
			Stake:   &stake,
		})
	}

	return &Allocation{
		Name:       "devnet",
		PoolReward: &float,
		Accounts:   accounts,
	}
}
