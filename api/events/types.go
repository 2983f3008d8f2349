// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/stakeline"
)

// FilteredEvent is the JSON view of one recorded staking operation.
type FilteredEvent struct {
	Sequence uint64                `json:"sequence"`
	Time     uint64                `json:"time"`
	Kind     eventdb.Kind          `json:"kind"`
	Account  stakeline.Address     `json:"account"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
}

// Convert an eventdb.Event into a json format event.
func convertEvent(event *eventdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Sequence: event.Sequence,
		Time:     event.Time,
		Kind:     event.Kind,
		Account:  event.Account,
		Amount:   (*math.HexOrDecimal256)(event.Amount),
	}
}

func convertEvents(events []*eventdb.Event) []*FilteredEvent {
	converted := make([]*FilteredEvent, len(events))
	for i, event := range events {
		converted[i] = convertEvent(event)
	}
	return converted
}
