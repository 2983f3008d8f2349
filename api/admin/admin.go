// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin assembles the operator endpoints served on the admin
// listener: runtime log verbosity, the request-log toggle and the
// health probe. Everything is nested under /admin.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lineax/stakeline/api/admin/apilogs"
	"github.com/lineax/stakeline/api/admin/loglevel"
	"github.com/lineax/stakeline/health"

	healthAPI "github.com/lineax/stakeline/api/admin/health"
)

func New(logLevel *slog.LevelVar, healthStatus *health.Health, apiLogsEnabled *atomic.Bool) http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	healthAPI.New(healthStatus).Mount(sub, "/health")
	apilogs.New(apiLogsEnabled).Mount(sub, "/apilogs")

	return handlers.CompressHandler(router)
}
