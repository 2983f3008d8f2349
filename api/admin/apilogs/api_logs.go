// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/lineax/stakeline/api/restutil"
	"github.com/lineax/stakeline/log"
)

var logger = log.WithContext("pkg", "apilogs")

// Status reports whether request logging is on.
type Status struct {
	Enabled bool `json:"enabled"`
}

// APILogs flips the request logger on and off at runtime. The flag is
// the same atomic the logging middleware consults per request, so a
// POST here takes effect on the next request served.
type APILogs struct {
	enabled *atomic.Bool
}

func New(enabled *atomic.Bool) *APILogs {
	return &APILogs{
		enabled: enabled,
	}
}

func (a *APILogs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("get-api-logs-enabled").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetStatus))

	sub.Path("").
		Methods(http.MethodPost).
		Name("post-api-logs-enabled").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetStatus))
}

func (a *APILogs) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, Status{
		Enabled: a.enabled.Load(),
	})
}

func (a *APILogs) handleSetStatus(w http.ResponseWriter, r *http.Request) error {
	var req Status
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(err)
	}
	a.enabled.Store(req.Enabled)

	logger.Info("api request logging updated", "enabled", req.Enabled)

	return restutil.WriteJSON(w, Status{
		Enabled: req.Enabled,
	})
}
