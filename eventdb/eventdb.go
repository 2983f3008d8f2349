// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists the append-only record of settled staking
// operations in SQLite. Events are written only after the ledger mutation
// that produced them has committed; a failed event write never unwinds the
// ledger.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/lineax/stakeline/stakeline"
)

// Kind tags the operation an event records.
type Kind string

const (
	Staked    Kind = "staked"
	Withdrawn Kind = "withdrawn"
	Claimed   Kind = "claimed"
)

// Event is one settled staking operation.
type Event struct {
	Sequence uint64 // assigned on append
	Time     uint64
	Kind     Kind
	Account  stakeline.Address
	Amount   *big.Int
}

type RangeType string

const (
	Sequence RangeType = "sequence"
	Time     RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Criteria matches events by kind and/or account. Nil fields match anything.
type Criteria struct {
	Kind    *Kind
	Account *stakeline.Address
}

// Filter selects events. Criteria in the set are OR-ed; the range and the
// criteria set are AND-ed.
type Filter struct {
	CriteriaSet []*Criteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	eventTime decimal(20,0),
	kind text,
	account blob(20),
	amount blob
);

CREATE INDEX if not exists eventTimeIndex on event(eventTime);
CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists accountIndex on event(account);
`

// EventDB manages the staking event history.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open an event db at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Append stores events in order, assigning each its sequence number.
func (db *EventDB) Append(events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, event := range events {
		res, err := tx.Exec("INSERT INTO event(eventTime, kind, account, amount) VALUES (?, ?, ?, ?);",
			event.Time,
			string(event.Kind),
			event.Account.Bytes(),
			event.Amount.Bytes(),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		event.Sequence = uint64(seq)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for _, event := range events {
		metricInsertCounter().AddWithLabel(1, map[string]string{"kind": string(event.Kind)})
	}
	return nil
}

// MaxSequence returns the sequence of the newest event, 0 when none.
func (db *EventDB) MaxSequence(ctx context.Context) (uint64, error) {
	row := db.db.QueryRowContext(ctx, "SELECT IFNULL(MAX(seq), 0) FROM event")
	var seq uint64
	if err := row.Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// Filter return events with options.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	metricsHandleFilter(filter)
	if filter == nil {
		return db.query(ctx, "SELECT * FROM event")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	condition := "seq"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			condition = "eventTime"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	length := len(filter.CriteriaSet)
	if length > 0 {
		for i, criteria := range filter.CriteriaSet {
			if i == 0 {
				stmt += " AND (( 1 "
			} else {
				stmt += " OR ( 1 "
			}
			if criteria.Kind != nil {
				args = append(args, string(*criteria.Kind))
				stmt += " AND kind = ? "
			}
			if criteria.Account != nil {
				args = append(args, criteria.Account.Bytes())
				stmt += " AND account = ? "
			}
			if i == length-1 {
				stmt += " )) "
			} else {
				stmt += " ) "
			}
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       uint64
			eventTime uint64
			kind      string
			account   []byte
			amount    []byte
		)
		if err := rows.Scan(
			&seq,
			&eventTime,
			&kind,
			&account,
			&amount,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Sequence: seq,
			Time:     eventTime,
			Kind:     Kind(kind),
			Account:  stakeline.BytesToAddress(account),
			Amount:   new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
