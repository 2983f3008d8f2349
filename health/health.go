// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks the liveness signals of a running node: whether the
// event log still answers probes and whether the token backends are
// reachable. The node's housekeeping loop feeds it, the admin API reads it.
package health

import (
	"sync"
	"time"
)

type EventLogProbe struct {
	LastSequence uint64     `json:"lastSequence"`
	ProbedAt     *time.Time `json:"probedAt"`
}

type Status struct {
	Healthy            bool           `json:"healthy"`
	EventLog           *EventLogProbe `json:"eventLog"`
	StakeTokenNominal  bool           `json:"stakeToken"`
	RewardTokenNominal bool           `json:"rewardToken"`
}

type Health struct {
	lock          sync.RWMutex
	lastProbe     time.Time
	lastSequence  uint64
	stakeTokenOK  bool
	rewardTokenOK bool
}

// New creates an empty tracker. It reports unhealthy until the first probes
// arrive.
func New() *Health {
	return &Health{}
}

// NewEventLogProbe records a successful event log read and the newest
// sequence it returned.
func (h *Health) NewEventLogProbe(seq uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastProbe = time.Now()
	h.lastSequence = seq
}

// TokenStatus records the outcome of the latest token backend pings.
func (h *Health) TokenStatus(stakeOK, rewardOK bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.stakeTokenOK = stakeOK
	h.rewardTokenOK = rewardOK
}

// Status reports liveness. The node counts as healthy when the last event
// log probe succeeded within maxProbeAge and both token backends answered
// their last ping.
func (h *Health) Status(maxProbeAge time.Duration) (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	probedAt := h.lastProbe
	probe := &EventLogProbe{
		LastSequence: h.lastSequence,
		ProbedAt:     &probedAt,
	}

	healthy := time.Since(h.lastProbe) <= maxProbeAge &&
		h.stakeTokenOK &&
		h.rewardTokenOK

	return &Status{
		Healthy:            healthy,
		EventLog:           probe,
		StakeTokenNominal:  h.stakeTokenOK,
		RewardTokenNominal: h.rewardTokenOK,
	}, nil
}
