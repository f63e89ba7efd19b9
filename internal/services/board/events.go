package board

// Wire type tags.
const (
	EventGameState         = "game_state"
	EventBackgroundChanged = "background_changed"
	EventTokenAdded        = "token_added"
	EventTokenMoved        = "token_moved"
	EventPing              = "ping"
)

// Event is a domain event produced by a committed mutation (or by Attach, for
// Snapshot). Events are immutable values.
type Event interface {
	EventType() string
}

// Snapshot is the full state of a room at one instant.
type Snapshot struct {
	Background string  `json:"background"`
	Tokens     []Token `json:"tokens"`
}

type BackgroundChanged struct {
	URL string `json:"url"`
}

type TokenAdded struct {
	Token
}

type TokenMoved struct {
	TokenID string `json:"tokenId"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

func (Snapshot) EventType() string          { return EventGameState }
func (BackgroundChanged) EventType() string { return EventBackgroundChanged }
func (TokenAdded) EventType() string        { return EventTokenAdded }
func (TokenMoved) EventType() string        { return EventTokenMoved }

// Frame is the envelope every transport writes: {"type": ..., "data": ...}.
// Consumers ignore types they do not know.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewFrame wraps evt in the wire envelope.
func NewFrame(evt Event) Frame {
	return Frame{Type: evt.EventType(), Data: evt}
}

// PingFrame is the liveness frame sent when a stream opens and on keepalive.
func PingFrame() Frame {
	return Frame{Type: EventPing, Data: struct{}{}}
}
