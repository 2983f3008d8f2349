// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error type for staking rule violations.
// A rule violation aborts the call and rolls its state changes back; it is
// terminal for the call, never for the engine.
package reverts

import (
	"errors"
)

// Predefined rule violations.
var (
	// ErrInsufficientStake the withdrawal exceeds the recorded staked amount.
	ErrInsufficientStake = New("insufficient stake")
	// ErrNothingToClaim the pending reward is exactly zero.
	ErrNothingToClaim = New("nothing to claim")
	// ErrTransferFailed the external token transfer service refused or failed the move.
	ErrTransferFailed = New("transfer failed")
	// ErrInvalidAmount a zero or malformed amount was supplied to a mutating operation.
	ErrInvalidAmount = New("invalid amount")
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
