package board

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// Broadcaster fans committed events out to every live Subscription of a
// room. Its registry lives on the room handle and is only touched under the
// room lock, the same lock the Store mutates under.
type Broadcaster struct {
	store      *Store
	bufferSize int
	closed     atomic.Bool
}

// NewBroadcaster binds a broadcaster to store; every mutation committed on
// the store is published from inside its critical section.
func NewBroadcaster(store *Store, bufferSize int) *Broadcaster {
	if bufferSize < 1 {
		bufferSize = 1
	}
	b := &Broadcaster{store: store, bufferSize: bufferSize}
	store.onCommit = b.publishLocked
	return b
}

// Attach registers a new Subscription and enqueues the room's Snapshot in the
// same critical section, so no committed event can fall between the two.
func (b *Broadcaster) Attach(key string) *Subscription {
	r := b.store.room(key)
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := newSubscription(key, b.bufferSize)
	sub.enqueueSnapshot(r.snapshotLocked())
	if b.closed.Load() {
		sub.closeLocked(ErrBroadcasterClosed)
		return sub
	}
	r.subs[sub] = struct{}{}

	zap.L().Debug("board.attach",
		zap.String("room", key),
		zap.String("sub", sub.id),
		zap.Int("viewers", len(r.subs)),
	)
	return sub
}

var ErrSnapshotNotPublishable = errors.New("snapshot is only sent on attach")

// Publish fans evt out to the room. Mutations made through the Store are
// published automatically; this is for events produced elsewhere. A Snapshot
// is rejected since it only ever opens a subscription.
func (b *Broadcaster) Publish(key string, evt Event) error {
	switch evt.(type) {
	case Snapshot, *Snapshot:
		return ErrSnapshotNotPublishable
	}
	r := b.store.room(key)
	r.mu.Lock()
	defer r.mu.Unlock()
	b.publishLocked(r, evt)
	return nil
}

func (b *Broadcaster) publishLocked(r *room, evt Event) {
	for sub := range r.subs {
		if sub.offer(evt) {
			continue
		}
		delete(r.subs, sub)
		if sub.Degraded() {
			zap.L().Warn("board.subscription_degraded",
				zap.String("room", r.key),
				zap.String("sub", sub.id),
				zap.String("event", evt.EventType()),
			)
		}
	}
}

// Detach removes sub from its room and closes it. Safe to call more than once.
func (b *Broadcaster) Detach(sub *Subscription) {
	if sub == nil {
		return
	}
	r := b.store.room(sub.room)
	r.mu.Lock()
	_, registered := r.subs[sub]
	delete(r.subs, sub)
	sub.closeLocked(ErrSubscriptionClosed)
	sub.markClosed()
	viewers := len(r.subs)
	r.mu.Unlock()

	if registered {
		zap.L().Debug("board.detach",
			zap.String("room", sub.room),
			zap.String("sub", sub.id),
			zap.Int("viewers", viewers),
		)
	}
}

// Viewers is the number of live subscriptions on the room.
func (b *Broadcaster) Viewers(key string) int {
	r := b.store.room(key)
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Close ends every subscription with ErrBroadcasterClosed. Subscriptions
// attached afterwards receive their snapshot and are closed immediately.
func (b *Broadcaster) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	n := 0
	b.store.rooms.Range(func(_, v any) bool {
		r := v.(*room)
		r.mu.Lock()
		for sub := range r.subs {
			sub.closeLocked(ErrBroadcasterClosed)
			delete(r.subs, sub)
			n++
		}
		r.mu.Unlock()
		return true
	})
	zap.L().Info("board.broadcaster_closed", zap.Int("subscriptions", n))
}
