package board

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	ErrSubscriptionClosed   = errors.New("subscription closed")
	ErrSubscriptionDegraded = errors.New("subscription degraded: event buffer full")
	ErrBroadcasterClosed    = errors.New("broadcaster closed")
)

// State is the lifecycle position of a Subscription.
type State int32

const (
	StateAttaching State = iota
	StateLive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAttaching:
		return "attaching"
	case StateLive:
		return "live"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Subscription is one viewer's ordered event queue for a single room.
//
// The broadcaster is the only producer and always enqueues while holding the
// room lock; the transport drain loop is the only consumer. Closing the
// queue also happens under the room lock, so a send never races a close and
// the consumer still receives whatever was queued before the close.
type Subscription struct {
	id       string
	room     string
	capacity int
	events   chan Event
	state    atomic.Int32
	sent     int // guarded by the room lock

	mu  sync.Mutex
	err error
}

// newSubscription reserves one slot on top of capacity for the attach
// snapshot. Live events are limited to capacity whether or not the snapshot
// has been read yet.
func newSubscription(room string, capacity int) *Subscription {
	return &Subscription{
		id:       uuid.NewString(),
		room:     room,
		capacity: capacity,
		events:   make(chan Event, capacity+1),
	}
}

func (s *Subscription) ID() string   { return s.id }
func (s *Subscription) Room() string { return s.room }
func (s *Subscription) State() State { return State(s.state.Load()) }

// Degraded reports whether the subscription was closed for missing an event.
func (s *Subscription) Degraded() bool { return errors.Is(s.Err(), ErrSubscriptionDegraded) }

// Events is the queue the drain loop reads. It is closed once the
// subscription leaves the Live state; Err then explains why.
func (s *Subscription) Events() <-chan Event { return s.events }

// Err returns the reason the subscription stopped accepting events, or nil
// while it is live.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// enqueueSnapshot makes the subscription live. Called under the room lock.
func (s *Subscription) enqueueSnapshot(snap Snapshot) {
	s.events <- snap
	s.sent = 1
	s.state.Store(int32(StateLive))
}

// offer enqueues evt without blocking. A full queue degrades the
// subscription. Called under the room lock.
func (s *Subscription) offer(evt Event) bool {
	if s.State() != StateLive {
		return false
	}
	if s.liveQueued() >= s.capacity {
		s.closeLocked(ErrSubscriptionDegraded)
		return false
	}
	s.events <- evt
	s.sent++
	return true
}

// liveQueued counts queued events other than an unread snapshot. The
// snapshot is always first, so it is unread until the consumer has taken
// at least one event. Called under the room lock.
func (s *Subscription) liveQueued() int {
	queued := len(s.events)
	if s.sent == queued {
		queued--
	}
	return queued
}

// closeLocked moves Live to Closing. Called under the room lock.
func (s *Subscription) closeLocked(reason error) bool {
	if !s.state.CompareAndSwap(int32(StateLive), int32(StateClosing)) {
		return false
	}
	s.mu.Lock()
	s.err = reason
	s.mu.Unlock()
	close(s.events)
	return true
}

func (s *Subscription) markClosed() {
	s.state.Store(int32(StateClosed))
}
