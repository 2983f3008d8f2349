// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
)

// AmountSlot is a wrapper for storage and retrieval of an unsigned amount at a
// fixed key. An absent record reads as zero; setting zero removes the record.
type AmountSlot struct {
	state *State
	key   []byte
}

// NewAmountSlot creates an amount slot at the given key.
func NewAmountSlot(state *State, key []byte) *AmountSlot {
	return &AmountSlot{state: state, key: key}
}

// Get returns the current value, zero if the record is absent.
func (a *AmountSlot) Get() (*big.Int, error) {
	raw, err := a.state.GetRaw(a.key)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// Set overwrites the current value.
func (a *AmountSlot) Set(value *big.Int) {
	a.state.SetRaw(a.key, value.Bytes())
}

// Add increases the current value by the given delta.
func (a *AmountSlot) Add(value *big.Int) error {
	cur, err := a.Get()
	if err != nil {
		return err
	}
	cur.Add(cur, value)
	a.Set(cur)
	return nil
}

// Sub decreases the current value by the given delta.
// The caller guards against going negative.
func (a *AmountSlot) Sub(value *big.Int) error {
	cur, err := a.Get()
	if err != nil {
		return err
	}
	cur.Sub(cur, value)
	a.Set(cur)
	return nil
}

// TimeSlot is a wrapper for storage and retrieval of a unix timestamp at a
// fixed key. An absent record reads as zero.
type TimeSlot struct {
	state *State
	key   []byte
}

// NewTimeSlot creates a time slot at the given key.
func NewTimeSlot(state *State, key []byte) *TimeSlot {
	return &TimeSlot{state: state, key: key}
}

// Get returns the current timestamp, zero if the record is absent.
func (t *TimeSlot) Get() (uint64, error) {
	raw, err := t.state.GetRaw(t.key)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(raw).Uint64(), nil
}

// Set overwrites the current timestamp.
func (t *TimeSlot) Set(ts uint64) {
	t.state.SetRaw(t.key, new(big.Int).SetUint64(ts).Bytes())
}
