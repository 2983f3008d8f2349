// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Signal broadcasts the occurrence of an event to its waiters. Unlike
// sync.Cond it is channel based, so a waiter can select on the signal
// and other channels at the same time. The zero value is ready to use.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

// Broadcast wakes every current waiter. Waiters created afterwards wait
// for the next broadcast.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	if s.ch != nil {
		close(s.ch)
	}
	s.ch = make(chan struct{})
	s.mu.Unlock()
}

// Waiter yields a channel that closes when the signal fires. Each C call
// re-arms on the channel current at the previous call, so a broadcast
// between two waits is not lost. A Waiter is not safe for concurrent use.
type Waiter interface {
	C() <-chan struct{}
}

// NewWaiter creates a Waiter joined to broadcasts from this point on.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	armed := s.ch
	s.mu.Unlock()
	return &waiter{signal: s, armed: armed}
}

type waiter struct {
	signal *Signal
	armed  <-chan struct{}
}

func (w *waiter) C() <-chan struct{} {
	ch := w.armed
	w.signal.mu.Lock()
	w.armed = w.signal.ch
	w.signal.mu.Unlock()
	return ch
}
