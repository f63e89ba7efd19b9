package board

// DefaultRoom is the room key used when a caller does not name one.
const DefaultRoom = "default"

// Token is a movable marker on the board. Tokens are plain values; every copy
// handed out of the store is independent of the live room state.
type Token struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// RoomInfo summarises a room for listings.
type RoomInfo struct {
	Room    string `json:"room"`
	Tokens  int    `json:"tokens"`
	Viewers int    `json:"viewers"`
}
