// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lineax/stakeline/metrics"
)

var (
	metricHTTPReqCounter       = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration      = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
	metricActiveWebsocketGauge = metrics.LazyLoadGaugeVec("api_active_websocket_count", []string{"subject"})
	websocketDurationBuckets   = []int64{0, 1000, 10_000, 60_000, 600_000, 1_800_000, 3_600_000}
	metricWebsocketDuration    = metrics.LazyLoadHistogramVec("api_websocket_duration", []string{"code", "subject"}, websocketDurationBuckets)
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// Hijack passes the connection through to the wrapped writer, so websocket
// upgrades keep working behind the middleware.
func (m *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := m.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// metricsMiddleware records request count and duration for every named route.
// Websocket routes, named "WS <subject>", are tracked with an active
// connection gauge instead of the request histogram.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			rt      = mux.CurrentRoute(r)
			enabled = false
			name    = ""
			subject = ""
		)

		if rt != nil && rt.GetName() != "" {
			enabled = true
			name = rt.GetName()
			if strings.HasPrefix(name, "WS ") {
				subject = strings.TrimPrefix(name, "WS ")
				metricActiveWebsocketGauge().AddWithLabel(1, map[string]string{"subject": subject})
			}
		}

		now := time.Now()
		mrw := newMetricsResponseWriter(w)
		next.ServeHTTP(mrw, r)

		if !enabled {
			return
		}
		if subject != "" {
			metricActiveWebsocketGauge().AddWithLabel(-1, map[string]string{"subject": subject})
			metricWebsocketDuration().ObserveWithLabels(time.Since(now).Milliseconds(),
				map[string]string{"code": strconv.Itoa(mrw.statusCode), "subject": subject})
			return
		}
		metricHTTPReqCounter().AddWithLabel(1,
			map[string]string{"name": name, "code": strconv.Itoa(mrw.statusCode), "method": r.Method})
		metricHTTPReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(),
			map[string]string{"name": name, "code": strconv.Itoa(mrw.statusCode), "method": r.Method})
	})
}
