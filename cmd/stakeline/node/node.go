// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node runs the background chores of a stakeline daemon: periodic
// health probes of the event log and token backends, gauge refreshes and
// system clock checks.
package node

import (
	"context"

	"github.com/lineax/stakeline/co"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/health"
	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/staking"
)

var logger = log.WithContext("pkg", "node")

type Node struct {
	goes co.Goes

	engine *staking.Staking
	events *eventdb.EventDB
	health *health.Health
}

func New(engine *staking.Staking, events *eventdb.EventDB, healthStatus *health.Health) *Node {
	return &Node{
		engine: engine,
		events: events,
		health: healthStatus,
	}
}

// Run keeps the housekeeping chores alive until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	defer n.goes.Wait()

	n.goes.Go(func() { n.houseKeeping(ctx) })

	return nil
}
