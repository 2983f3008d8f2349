// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/lineax/stakeline/cache"
	"github.com/lineax/stakeline/kv"
	"github.com/lineax/stakeline/stackedmap"
)

// Error is the special error type of the state layer.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State provides checkpointable staged writes over a kv store.
//
// Writes journal in memory until Commit flushes them through a single batch;
// a zero-length value stands for record absence and turns into a delete on
// commit. Committed raw values are served from an LRU kept write-through.
// State is not safe for concurrent use; callers serialize access.
type State struct {
	store kv.GetPutter
	cache *cache.LRU // committed raw values
	sm    *stackedmap.StackedMap
}

// New create state object over the given store.
// cacheSize is the number of committed records kept decodable without a store hit.
func New(store kv.GetPutter, cacheSize int) (*State, error) {
	c, err := cache.NewLRU(cacheSize)
	if err != nil {
		return nil, &Error{err}
	}
	s := &State{store: store, cache: c}
	s.sm = stackedmap.New(s.cacheGetter)
	// base level catches writes made outside explicit checkpoints
	s.sm.Push()
	return s, nil
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key interface{}) (value interface{}, exist bool, err error) {
	raw, err := s.cache.GetOrLoad(key, func(k interface{}) (interface{}, error) {
		val, err := s.store.Get([]byte(k.(string)))
		if err != nil {
			if s.store.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// GetRaw returns the raw storage value for the given key.
// A zero-length result means the record is absent.
func (s *State) GetRaw(key []byte) ([]byte, error) {
	v, _, err := s.sm.Get(string(key))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// SetRaw sets the raw storage value for the given key.
// A zero-length value marks the record absent.
func (s *State) SetRaw(key, raw []byte) {
	s.sm.Put(string(key), raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(key []byte, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRaw(key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(key []byte, dec func([]byte) error) error {
	raw, err := s.GetRaw(key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flushes all journaled changes into the kv store in one batch write,
// then clears the journal. Committed values stay served from the cache.
func (s *State) Commit() error {
	// later journal entries win
	final := make(map[string][]byte)
	s.sm.Journal(func(k, v interface{}) bool {
		final[k.(string)] = v.([]byte)
		return true
	})

	batch := s.store.NewBatch()
	for k, v := range final {
		if len(v) == 0 {
			if err := batch.Delete([]byte(k)); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put([]byte(k), v); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for k, v := range final {
		s.cache.Add(k, v)
	}
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
