package ws

import "encoding/json"

// Envelope wraps every inbound WS frame.
type Envelope struct {
	Type string          `json:"type"`           // e.g. "move_token"
	Data json.RawMessage `json:"data,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// SetBackgroundRequest is the body for "set_background".
type SetBackgroundRequest struct {
	URL *string `json:"url" validate:"required"`
}

// AddTokenRequest is the body for "add_token".
type AddTokenRequest struct {
	ID       string `json:"id"       validate:"required"`
	UserID   string `json:"userId"   validate:"required"`
	Username string `json:"username" validate:"required"`
	Color    string `json:"color"    validate:"required"`
	X        *int   `json:"x"        validate:"required"`
	Y        *int   `json:"y"        validate:"required"`
}

// MoveTokenRequest is the body for "move_token".
type MoveTokenRequest struct {
	TokenID string `json:"tokenId" validate:"required"`
	X       *int   `json:"x"       validate:"required"`
	Y       *int   `json:"y"       validate:"required"`
}

// AckBody answers every successful command.
type AckBody struct {
	Success bool `json:"success"`
}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}
