// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis defines the initial asset allocation for solo mode, where
// the stake and reward ledgers live in process memory and have to be funded
// before the service can do anything useful.
package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/token/memtoken"
)

// Allocation is the initial funding of the in-memory ledgers.
type Allocation struct {
	Name string `yaml:"name"`
	// PoolReward is the reward float credited to the engine account, the
	// source every claim payout is drawn from.
	PoolReward *Amount   `yaml:"poolReward"`
	Accounts   []Account `yaml:"accounts"`
}

// Account is a funded account of the allocation.
type Account struct {
	Address Address `yaml:"address"`
	Stake   *Amount `yaml:"stake"`
	Reward  *Amount `yaml:"reward"`
}

// Load reads an allocation file. Unknown fields are rejected.
func Load(path string) (*Allocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open allocation file")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var alloc Allocation
	if err := dec.Decode(&alloc); err != nil {
		return nil, errors.Wrap(err, "decode allocation file")
	}
	if err := alloc.validate(); err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (al *Allocation) validate() error {
	if len(al.Accounts) == 0 {
		return errors.New("at least one account")
	}
	if al.PoolReward != nil && al.PoolReward.Big().Sign() < 0 {
		return errors.New("poolReward must be a non-negative integer")
	}
	for _, a := range al.Accounts {
		if stakeline.Address(a.Address).IsZero() {
			return errors.New("account address must be set")
		}
		if a.Stake == nil && a.Reward == nil {
			return fmt.Errorf("%s: stake or reward balance must be set", stakeline.Address(a.Address))
		}
		if a.Stake != nil && a.Stake.Big().Sign() < 0 {
			return fmt.Errorf("%s: stake must be a non-negative integer", stakeline.Address(a.Address))
		}
		if a.Reward != nil && a.Reward.Big().Sign() < 0 {
			return fmt.Errorf("%s: reward must be a non-negative integer", stakeline.Address(a.Address))
		}
	}
	return nil
}

// Seed mints the allocated balances into the given ledgers. The engine
// account receives the reward float.
func (al *Allocation) Seed(engine stakeline.Address, stakeToken, rewardToken *memtoken.Token) {
	for _, a := range al.Accounts {
		addr := stakeline.Address(a.Address)
		if a.Stake != nil {
			stakeToken.Mint(addr, a.Stake.Big())
		}
		if a.Reward != nil {
			rewardToken.Mint(addr, a.Reward.Big())
		}
	}
	if al.PoolReward != nil {
		rewardToken.Mint(engine, al.PoolReward.Big())
	}
}

// Amount decodes YAML scalars as hex or decimal big integers.
type Amount math.HexOrDecimal256

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	i, ok := math.ParseBig256(raw)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", raw)
	}
	*a = Amount(*i)
	return nil
}

// Big returns the amount as a big integer.
func (a *Amount) Big() *big.Int {
	return (*big.Int)(a)
}

// Address decodes YAML scalars as 0x-hex account addresses.
type Address stakeline.Address

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := stakeline.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = Address(*parsed)
	return nil
}
