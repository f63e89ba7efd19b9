package board

import (
	"slices"
	"strings"
	"sync"
)

// commitFunc is invoked after a mutation is applied, while the room lock is
// still held. It must not block.
type commitFunc func(r *room, evt Event)

// Store owns the authoritative state of every room. Rooms are created on
// first touch and live for the lifetime of the process.
type Store struct {
	rooms    sync.Map // room key -> *room
	onCommit commitFunc // set once by NewBroadcaster
}

func NewStore() *Store { return &Store{} }

func (s *Store) room(key string) *room {
	if v, ok := s.rooms.Load(key); ok {
		return v.(*room)
	}
	v, _ := s.rooms.LoadOrStore(key, newRoom(key))
	return v.(*room)
}

// mutate runs apply under the room lock and hands the resulting event to the
// commit hook inside the same critical section.
func (s *Store) mutate(key string, apply func(r *room) (Event, bool)) {
	r := s.room(key)
	r.mu.Lock()
	defer r.mu.Unlock()

	evt, ok := apply(r)
	if ok && s.onCommit != nil {
		s.onCommit(r, evt)
	}
}

// GetSnapshot returns an independent copy of the room's state.
func (s *Store) GetSnapshot(key string) Snapshot {
	r := s.room(key)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// SetBackground overwrites the background unconditionally.
func (s *Store) SetBackground(key, url string) BackgroundChanged {
	evt := BackgroundChanged{URL: url}
	s.mutate(key, func(r *room) (Event, bool) {
		r.background = url
		return evt, true
	})
	return evt
}

// AddToken stores t under its id. An existing token with the same id is
// replaced; user uniqueness is left to the caller.
func (s *Store) AddToken(key string, t Token) TokenAdded {
	evt := TokenAdded{Token: t}
	s.mutate(key, func(r *room) (Event, bool) {
		r.tokens[t.ID] = t
		return evt, true
	})
	return evt
}

// MoveToken repositions an existing token. Unknown ids are a no-op and
// report ok == false.
func (s *Store) MoveToken(key, tokenID string, x, y int) (evt TokenMoved, ok bool) {
	s.mutate(key, func(r *room) (Event, bool) {
		t, found := r.tokens[tokenID]
		if !found {
			return nil, false
		}
		t.X, t.Y = x, y
		r.tokens[tokenID] = t
		evt, ok = TokenMoved{TokenID: tokenID, X: x, Y: y}, true
		return evt, true
	})
	return evt, ok
}

// Rooms lists every room touched so far, sorted by key.
func (s *Store) Rooms() []RoomInfo {
	out := make([]RoomInfo, 0)
	s.rooms.Range(func(_, v any) bool {
		out = append(out, v.(*room).info())
		return true
	})
	slices.SortFunc(out, func(a, b RoomInfo) int { return strings.Compare(a.Room, b.Room) })
	return out
}
