// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "github.com/lineax/stakeline/metrics"

var (
	metricInsertCounter     = metrics.LazyLoadCounterVec("eventdb_insert_count", []string{"kind"})
	metricQueryOrderCounter = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
)

func metricsHandleFilter(filter *Filter) {
	order := ASC
	if filter != nil && filter.Order == DESC {
		order = DESC
	}
	metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": string(order)})
}
