package board

import (
	"slices"
	"strings"
	"sync"
)

// room is the per-room handle. mu serialises every mutation, the attach
// snapshot read and the fan-out, so all three observe one total order.
type room struct {
	key string

	mu         sync.Mutex
	background string
	tokens     map[string]Token
	subs       map[*Subscription]struct{}
}

func newRoom(key string) *room {
	return &room{
		key:    key,
		tokens: make(map[string]Token),
		subs:   make(map[*Subscription]struct{}),
	}
}

// snapshotLocked copies the current state. r.mu must be held.
func (r *room) snapshotLocked() Snapshot {
	tokens := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b Token) int { return strings.Compare(a.ID, b.ID) })
	return Snapshot{Background: r.background, Tokens: tokens}
}

func (r *room) info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{Room: r.key, Tokens: len(r.tokens), Viewers: len(r.subs)}
}
