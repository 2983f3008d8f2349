// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"time"

	"github.com/lineax/stakeline/metrics"
)

var (
	metricOpCounter        = metrics.LazyLoadCounterVec("staking_op_count", []string{"op", "status"})
	metricOpDuration       = metrics.LazyLoadHistogramVec("staking_op_duration_ms", []string{"op"}, metrics.BucketHTTPReqs)
	metricTotalStakedGauge = metrics.LazyLoadGauge("staking_total_staked")
	metricEventDropCounter = metrics.LazyLoadCounterVec("staking_event_drop_count", []string{"kind"})
)

func observeOp(op string, startTime time.Time) {
	metricOpDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"op": op})
}
