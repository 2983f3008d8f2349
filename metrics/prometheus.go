// Copyright (c) 2025 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakeline_metrics"

// InitializePrometheusMetrics swaps the backend for one registering on
// the default prometheus registerer. Once installed it cannot be reset.
func InitializePrometheusMetrics() {
	if _, ok := backend.(*promBackend); !ok {
		backend = &promBackend{}
		registerIOCollector()
	}
}

// promBackend registers one collector per meter name on first use.
type promBackend struct {
	meters sync.Map // name -> meter
}

func (b *promBackend) Counter(name string) CountMeter {
	m, ok := b.meters.Load(name)
	if !ok {
		m, _ = b.meters.LoadOrStore(name, newPromCounter(name))
	}
	return m.(CountMeter)
}

func (b *promBackend) CounterVec(name string, labels []string) CountVecMeter {
	m, ok := b.meters.Load(name)
	if !ok {
		m, _ = b.meters.LoadOrStore(name, newPromCounterVec(name, labels))
	}
	return m.(CountVecMeter)
}

func (b *promBackend) Gauge(name string) GaugeMeter {
	m, ok := b.meters.Load(name)
	if !ok {
		m, _ = b.meters.LoadOrStore(name, newPromGauge(name))
	}
	return m.(GaugeMeter)
}

func (b *promBackend) GaugeVec(name string, labels []string) GaugeVecMeter {
	m, ok := b.meters.Load(name)
	if !ok {
		m, _ = b.meters.LoadOrStore(name, newPromGaugeVec(name, labels))
	}
	return m.(GaugeVecMeter)
}

func (b *promBackend) Histogram(name string, buckets []int64) HistogramMeter {
	m, ok := b.meters.Load(name)
	if !ok {
		m, _ = b.meters.LoadOrStore(name, newPromHistogram(name, buckets))
	}
	return m.(HistogramMeter)
}

func (b *promBackend) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	m, ok := b.meters.Load(name)
	if !ok {
		m, _ = b.meters.LoadOrStore(name, newPromHistogramVec(name, labels, buckets))
	}
	return m.(HistogramVecMeter)
}

func (b *promBackend) Handler() http.Handler {
	return promhttp.Handler()
}

// register reports failures instead of panicking; a name collision
// leaves the meter unregistered but still usable.
func register(c prometheus.Collector, name string) {
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
}

func floatBuckets(buckets []int64) []float64 {
	out := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, float64(b))
	}
	return out
}

func newPromCounter(name string) CountMeter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
	register(c, name)
	return promCounter{c}
}

func newPromCounterVec(name string, labels []string) CountVecMeter {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
	register(c, name)
	return promCounterVec{c}
}

func newPromGauge(name string) GaugeMeter {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
	register(g, name)
	return promGauge{g}
}

func newPromGaugeVec(name string, labels []string) GaugeVecMeter {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
	register(g, name)
	return promGaugeVec{g}
}

func newPromHistogram(name string, buckets []int64) HistogramMeter {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets(buckets),
	})
	register(h, name)
	return promHistogram{h}
}

func newPromHistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets(buckets),
	}, labels)
	register(h, name)
	return promHistogramVec{h}
}

type promCounter struct {
	counter prometheus.Counter
}

func (m promCounter) Add(v int64) { m.counter.Add(float64(v)) }

type promCounterVec struct {
	counter *prometheus.CounterVec
}

func (m promCounterVec) AddWithLabel(v int64, labels map[string]string) {
	m.counter.With(labels).Add(float64(v))
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (m promGauge) Add(v int64) { m.gauge.Add(float64(v)) }
func (m promGauge) Set(v int64) { m.gauge.Set(float64(v)) }

type promGaugeVec struct {
	gauge *prometheus.GaugeVec
}

func (m promGaugeVec) AddWithLabel(v int64, labels map[string]string) {
	m.gauge.With(labels).Add(float64(v))
}

func (m promGaugeVec) SetWithLabel(v int64, labels map[string]string) {
	m.gauge.With(labels).Set(float64(v))
}

type promHistogram struct {
	histogram prometheus.Histogram
}

func (m promHistogram) Observe(v int64) { m.histogram.Observe(float64(v)) }

type promHistogramVec struct {
	histogram *prometheus.HistogramVec
}

func (m promHistogramVec) ObserveWithLabels(v int64, labels map[string]string) {
	m.histogram.With(labels).Observe(float64(v))
}
