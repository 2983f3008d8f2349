// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/api/events"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/lvldb"
	"github.com/lineax/stakeline/metrics"
	"github.com/lineax/stakeline/staking"
	"github.com/lineax/stakeline/state"
	"github.com/lineax/stakeline/test/datagen"
	"github.com/lineax/stakeline/token/memtoken"

	stakingAPI "github.com/lineax/stakeline/api/staking"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newTestEngine(t *testing.T) (*staking.Staking, *eventdb.EventDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 128)
	require.NoError(t, err)

	eventDB, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { eventDB.Close() })

	pool := datagen.RandAddress()
	engine := staking.New(pool, st, staking.DefaultConfig(), memtoken.New(pool), memtoken.New(pool), eventDB, nil)
	return engine, eventDB
}

func TestMetricsMiddleware(t *testing.T) {
	engine, _ := newTestEngine(t)

	router := mux.NewRouter()
	stakingAPI.New(engine).Mount(router, "/staking")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	addr := datagen.RandAddress()
	_, code := httpGet(t, ts.URL+"/staking/accounts/"+addr.String())
	assert.Equal(t, 200, code)

	_, code = httpGet(t, ts.URL+"/staking/accounts/0xinvalid")
	assert.Equal(t, 400, code)

	// claiming with nothing accrued is refused
	res, err := http.Post(ts.URL+"/staking/claims", "application/json", bytes.NewReader([]byte(`{"caller":"`+addr.String()+`"}`)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, 403, res.StatusCode)

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	metrics, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m := metrics["stakeline_metrics_api_request_count"].GetMetric()
	assert.Equal(t, 3, len(m), "should be 3 metric entries")
	assert.Equal(t, float64(1), m[0].GetCounter().GetValue())
	assert.Equal(t, float64(1), m[1].GetCounter().GetValue())
	assert.Equal(t, float64(1), m[2].GetCounter().GetValue())

	labels := m[0].GetLabel()
	assert.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "200", labels[0].GetValue())
	assert.Equal(t, "method", labels[1].GetName())
	assert.Equal(t, "GET", labels[1].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "GET /staking/accounts/{address}", labels[2].GetValue())

	labels = m[1].GetLabel()
	assert.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "400", labels[0].GetValue())
	assert.Equal(t, "method", labels[1].GetName())
	assert.Equal(t, "GET", labels[1].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "GET /staking/accounts/{address}", labels[2].GetValue())

	labels = m[2].GetLabel()
	assert.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "403", labels[0].GetValue())
	assert.Equal(t, "method", labels[1].GetName())
	assert.Equal(t, "POST", labels[1].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "POST /staking/claims", labels[2].GetValue())
}

func TestWebsocketMetrics(t *testing.T) {
	engine, eventDB := newTestEngine(t)

	router := mux.NewRouter()
	eventsResource := events.New(engine, eventDB, 100, []string{"*"})
	t.Cleanup(eventsResource.Close)
	eventsResource.Mount(router, "/events")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	// initiate 1 event subscription, active websocket should be 1
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/events/ws"}
	conn1, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	assert.Nil(t, err)
	defer conn1.Close()

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	metrics, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m := metrics["stakeline_metrics_api_active_websocket_count"].GetMetric()
	assert.Equal(t, 1, len(m), "should be 1 metric entries")
	assert.Equal(t, float64(1), m[0].GetGauge().GetValue())

	labels := m[0].GetLabel()
	assert.Equal(t, "subject", labels[0].GetName())
	assert.Equal(t, "/events", labels[0].GetValue())

	// initiate a second subscription, active websocket should be 2
	conn2, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	assert.Nil(t, err)
	defer conn2.Close()

	body, _ = httpGet(t, ts.URL+"/metrics")
	metrics, err = parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m = metrics["stakeline_metrics_api_active_websocket_count"].GetMetric()
	assert.Equal(t, 1, len(m), "should be 1 metric entries")
	assert.Equal(t, float64(2), m[0].GetGauge().GetValue())
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
