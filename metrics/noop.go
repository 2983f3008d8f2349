// Copyright (c) 2025 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopBackend drops every measurement. It stays installed until a
// binary swaps in a real backend.
type noopBackend struct{}

func (noopBackend) Counter(string) CountMeter                 { return noopMeter{} }
func (noopBackend) CounterVec(string, []string) CountVecMeter { return noopMeter{} }
func (noopBackend) Gauge(string) GaugeMeter                   { return noopMeter{} }
func (noopBackend) GaugeVec(string, []string) GaugeVecMeter   { return noopMeter{} }
func (noopBackend) Histogram(string, []int64) HistogramMeter  { return noopMeter{} }
func (noopBackend) HistogramVec(string, []string, []int64) HistogramVecMeter {
	return noopMeter{}
}
func (noopBackend) Handler() http.Handler { return http.NotFoundHandler() }

// noopMeter satisfies every meter interface.
type noopMeter struct{}

func (noopMeter) Add(int64)                                  {}
func (noopMeter) AddWithLabel(int64, map[string]string)      {}
func (noopMeter) Set(int64)                                  {}
func (noopMeter) SetWithLabel(int64, map[string]string)      {}
func (noopMeter) Observe(int64)                              {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
