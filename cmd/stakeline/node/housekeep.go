// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lineax/stakeline/staking"
)

const (
	// probeInterval must stay well under the max probe age the admin
	// health endpoint tolerates, or a healthy node reads as down.
	probeInterval     = 10 * time.Second
	probeTimeout      = 5 * time.Second
	clockSyncInterval = 10 * time.Minute
	maxClockOffset    = time.Second
)

func (n *Node) houseKeeping(ctx context.Context) {
	logger.Debug("enter house keeping")

	probeTicker := time.NewTicker(probeInterval)
	clockSyncTicker := time.NewTicker(clockSyncInterval)

	defer func() {
		logger.Debug("leave house keeping")
		probeTicker.Stop()
		clockSyncTicker.Stop()
	}()

	// fill in the health report before the first tick fires
	n.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-probeTicker.C:
			n.probe(ctx)
		case <-clockSyncTicker.C:
			go checkClockOffset()
		}
	}
}

// probe refreshes the health report and republishes the pool gauges.
func (n *Node) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if seq, err := n.events.MaxSequence(ctx); err != nil {
		logger.Warn("failed to probe event log", "err", err)
	} else {
		n.health.NewEventLogProbe(seq)
	}

	pool := n.engine.PoolAccount()
	_, stakeErr := n.engine.AssetBalance(ctx, staking.AssetStake, pool)
	if stakeErr != nil {
		logger.Warn("stake token backend unreachable", "err", stakeErr)
	}
	_, rewardErr := n.engine.AssetBalance(ctx, staking.AssetReward, pool)
	if rewardErr != nil {
		logger.Warn("reward token backend unreachable", "err", rewardErr)
	}
	n.health.TokenStatus(stakeErr == nil, rewardErr == nil)

	n.engine.RefreshGauges()
}

// Rewards accrue by the wall clock, so a drifting clock misprices them.
func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
