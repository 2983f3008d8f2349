// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lineax/stakeline/api/events"
	"github.com/lineax/stakeline/api/middleware"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/staking"

	stakingAPI "github.com/lineax/stakeline/api/staking"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins     string
	EventsLimit        uint64
	PprofOn            bool
	EnableMetrics      bool
	LogAPIRequests     *atomic.Bool
	SlowQueryThreshold time.Duration
	Log5xxErrors       bool
}

// New return api router
func New(
	engine *staking.Staking,
	eventDB *eventdb.EventDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	stakingAPI.New(engine).
		Mount(router, "/staking")
	eventsResource := events.New(engine, eventDB, opts.EventsLimit, origins)
	eventsResource.Mount(router, "/events")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.LogAPIRequests != nil {
		handler = middleware.RequestLoggerMiddleware(
			logger, opts.LogAPIRequests, opts.SlowQueryThreshold, opts.Log5xxErrors,
		)(handler)
	}

	return handler.ServeHTTP, eventsResource.Close // events handles hijacked conns, which need to be closed
}
