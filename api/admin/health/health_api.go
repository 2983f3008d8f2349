// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lineax/stakeline/api/restutil"
	"github.com/lineax/stakeline/health"
)

// defaultMaxProbeAge must outlast the housekeeping interval, or a healthy
// node reads as stale between two probes.
const defaultMaxProbeAge = 30 * time.Second

type API struct {
	healthStatus *health.Health
}

func New(healthStatus *health.Health) *API {
	return &API{
		healthStatus: healthStatus,
	}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxProbeAge := defaultMaxProbeAge
	if raw := r.URL.Query().Get("maxProbeAge"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			maxProbeAge = parsed
		}
	}

	acc, err := h.healthStatus.Status(maxProbeAge)
	if err != nil {
		return err
	}

	if !acc.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable) // Set the status to 503
	} else {
		w.WriteHeader(http.StatusOK) // Set the status to 200
	}
	return restutil.WriteJSON(w, acc)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(restutil.WrapHandlerFunc(h.handleGetHealth))
}
