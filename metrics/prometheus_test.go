// Copyright (c) 2025 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestPromBackend(t *testing.T) {
	InitializePrometheusMetrics()

	counter := LazyLoadCounter("op_count")()
	counterVec := LazyLoadCounterVec("op_count_vec", []string{"parity"})()
	gauge := LazyLoadGauge("pool_gauge")()
	gaugeVec := LazyLoadGaugeVec("pool_gauge_vec", []string{"parity"})()
	hist := LazyLoadHistogram("op_hist", BucketHTTPReqs)()
	histVec := LazyLoadHistogramVec("op_hist_vec", []string{"parity"}, BucketHTTPReqs)()

	counter.Add(1)

	// re-fetching by name lands on the same underlying meter
	grows := int64(rand.N(100) + 1)
	for range grows {
		LazyLoadCounter("op_count_grow")().Add(1)
	}

	sum := int64(0)
	samples := int64(rand.N(100) + 2)
	for i := int64(0); i < samples; i++ {
		parity := map[string]string{"parity": strconv.FormatInt(i%2, 10)}
		hist.Observe(i)
		histVec.ObserveWithLabels(i, parity)
		counterVec.AddWithLabel(i, parity)
		gaugeVec.AddWithLabel(i, parity)
		gauge.Add(i)
		sum += i
	}

	families, err := prometheus.Gatherers{prometheus.DefaultGatherer}.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	require.Equal(t, float64(1), byName["stakeline_metrics_op_count"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(grows), byName["stakeline_metrics_op_count_grow"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(sum), byName["stakeline_metrics_op_hist"].Metric[0].GetHistogram().GetSampleSum())

	histVecSum := byName["stakeline_metrics_op_hist_vec"].Metric[0].GetHistogram().GetSampleSum() +
		byName["stakeline_metrics_op_hist_vec"].Metric[1].GetHistogram().GetSampleSum()
	require.Equal(t, float64(sum), histVecSum)

	counterVecSum := byName["stakeline_metrics_op_count_vec"].Metric[0].GetCounter().GetValue() +
		byName["stakeline_metrics_op_count_vec"].Metric[1].GetCounter().GetValue()
	require.Equal(t, float64(sum), counterVecSum)

	require.Equal(t, float64(sum), byName["stakeline_metrics_pool_gauge"].Metric[0].GetGauge().GetValue())
	gaugeVecSum := byName["stakeline_metrics_pool_gauge_vec"].Metric[0].GetGauge().GetValue() +
		byName["stakeline_metrics_pool_gauge_vec"].Metric[1].GetGauge().GetValue()
	require.Equal(t, float64(sum), gaugeVecSum)
}

func TestLazyBinding(t *testing.T) {
	backend = noopBackend{}

	lazyCounter := LazyLoadCounter("bind_count")
	lazyCounterVec := LazyLoadCounterVec("bind_count_vec", nil)
	lazyGauge := LazyLoadGauge("bind_gauge")
	lazyGaugeVec := LazyLoadGaugeVec("bind_gauge_vec", nil)
	lazyHist := LazyLoadHistogram("bind_hist", nil)
	lazyHistVec := LazyLoadHistogramVec("bind_hist_vec", nil, nil)

	// nothing resolved yet, so the install below decides the type
	InitializePrometheusMetrics()

	require.IsType(t, promCounter{}, lazyCounter())
	require.IsType(t, promCounterVec{}, lazyCounterVec())
	require.IsType(t, promGauge{}, lazyGauge())
	require.IsType(t, promGaugeVec{}, lazyGaugeVec())
	require.IsType(t, promHistogram{}, lazyHist())
	require.IsType(t, promHistogramVec{}, lazyHistVec())

	// a meter resolved before the install stays bound to the noop backend
	backend = noopBackend{}
	early := LazyLoadGauge("bind_early")
	require.IsType(t, noopMeter{}, early())
	InitializePrometheusMetrics()
	require.IsType(t, noopMeter{}, early())
}
