// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events serves the staking history: a paginated filter endpoint and
// a websocket feed that follows the event log as it grows.
package events

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/lineax/stakeline/api/restutil"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking"
)

var logger = log.WithContext("pkg", "api/events")

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to write a message to the peer. Readers that cannot keep
	// up miss the deadline and get evicted.
	writeWait = 10 * time.Second
)

type Events struct {
	engine   *staking.Staking
	db       *eventdb.EventDB
	limit    uint64
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(engine *staking.Staking, db *eventdb.EventDB, limit uint64, allowedOrigins []string) *Events {
	return &Events{
		engine: engine,
		db:     db,
		limit:  limit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseFilter(req, e.limit)
	if err != nil {
		return restutil.BadRequest(err)
	}
	if filter.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
	}
	events, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertEvents(events))
}

// parseFilter builds an event filter from the request query parameters:
// kind, account, unit, from, to, order, offset and limit.
func parseFilter(req *http.Request, defaultLimit uint64) (*eventdb.Filter, error) {
	query := req.URL.Query()

	criteria := &eventdb.Criteria{}
	hasCriteria := false
	if raw := query.Get("kind"); raw != "" {
		kind := eventdb.Kind(raw)
		switch kind {
		case eventdb.Staked, eventdb.Withdrawn, eventdb.Claimed:
		default:
			return nil, errors.New("kind: unknown")
		}
		criteria.Kind = &kind
		hasCriteria = true
	}
	if raw := query.Get("account"); raw != "" {
		addr, err := stakeline.ParseAddress(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "account")
		}
		criteria.Account = addr
		hasCriteria = true
	}

	var filterRange *eventdb.Range
	if query.Get("from") != "" || query.Get("to") != "" {
		unit := eventdb.RangeType(query.Get("unit"))
		switch unit {
		case "":
			unit = eventdb.Sequence
		case eventdb.Sequence, eventdb.Time:
		default:
			return nil, errors.New("unit: unknown")
		}
		filterRange = &eventdb.Range{Unit: unit, To: math.MaxUint64}
		if raw := query.Get("from"); raw != "" {
			from, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, errors.WithMessage(err, "from")
			}
			filterRange.From = from
		}
		if raw := query.Get("to"); raw != "" {
			to, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, errors.WithMessage(err, "to")
			}
			if to < filterRange.From {
				return nil, errors.New("to must be greater than or equal to from")
			}
			filterRange.To = to
		}
	}

	order := eventdb.ASC
	switch eventdb.Order(query.Get("order")) {
	case "", eventdb.ASC:
	case eventdb.DESC:
		order = eventdb.DESC
	default:
		return nil, errors.New("order: unknown")
	}

	options := &eventdb.Options{Limit: defaultLimit}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "offset")
		}
		options.Offset = offset
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "limit")
		}
		options.Limit = limit
	}

	filter := &eventdb.Filter{
		Range:   filterRange,
		Options: options,
		Order:   order,
	}
	if hasCriteria {
		filter.CriteriaSet = []*eventdb.Criteria{criteria}
	}
	return filter, nil
}

func (e *Events) handleSubscribe(w http.ResponseWriter, req *http.Request) error {
	var position uint64
	if raw := req.URL.Query().Get("pos"); raw != "" {
		pos, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "pos"))
		}
		position = pos
	} else {
		pos, err := e.db.MaxSequence(req.Context())
		if err != nil {
			return err
		}
		position = pos
	}

	conn, closed, err := e.setupConn(w, req)
	// since the conn is hijacked here, no error should be returned in
	// the following cases
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer e.closeConn(conn)

	if err := e.pipe(conn, position, closed); err != nil {
		logger.Debug("error in websocket pipe", "err", err)
	}
	return nil
}

func (e *Events) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := e.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	// start read loop to handle close event
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return conn, closed, nil
}

// pipe drains history newer than position to the peer, then follows the log
// tick by tick until either side goes away.
func (e *Events) pipe(conn *websocket.Conn, position uint64, closed chan struct{}) error {
	ticker := e.engine.NewTicker()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		events, err := e.db.Filter(context.Background(), &eventdb.Filter{
			Range:   &eventdb.Range{Unit: eventdb.Sequence, From: position + 1, To: math.MaxUint64},
			Options: &eventdb.Options{Limit: e.limit},
		})
		if err != nil {
			return errors.WithMessage(err, "read events")
		}
		for _, event := range events {
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteJSON(convertEvent(event)); err != nil {
				return errors.WithMessage(err, "write event")
			}
			position = event.Sequence
		}
		if uint64(len(events)) == e.limit {
			// more to drain, keep going without waiting for a tick
			select {
			case <-e.done:
				return nil
			case <-closed:
				return nil
			default:
			}
			continue
		}

		select {
		case <-e.done:
			return nil
		case <-closed:
			return nil
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-ticker.C():
		}
	}
}

func (e *Events) closeConn(conn *websocket.Conn) {
	// to send close message to the peer before closing
	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	conn.WriteMessage(                               //nolint:errcheck
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	conn.Close()
}

// Close waits for all hijacked connections to wind down.
func (e *Events) Close() {
	close(e.done)
	e.wg.Wait()
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
	sub.Path("/ws").
		Methods(http.MethodGet).
		Name("WS /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleSubscribe))
}
