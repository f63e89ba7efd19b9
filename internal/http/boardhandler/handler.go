package boardhandler

import (
	"net/http"

	"tabletopgo/internal/services/board"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc         board.IBoardService
	defaultRoom string
}

func New(svc board.IBoardService, defaultRoom string) *Handler {
	return &Handler{svc: svc, defaultRoom: defaultRoom}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/api/game/state", h.state)
	r.GET("/api/game/rooms", h.rooms)
	r.POST("/api/game/background", h.setBackground)
	r.POST("/api/game/token/add", h.addToken)
	r.POST("/api/game/token/move", h.moveToken)
}

// ResolveRoom reads the room key from the query string. A missing or empty
// room selects defaultRoom. Every route that takes a room goes through here.
func ResolveRoom(ginCtx *gin.Context, defaultRoom string) (string, error) {
	var q RoomQuery
	if err := ginCtx.ShouldBindQuery(&q); err != nil {
		return "", err
	}
	if q.Room == "" {
		return defaultRoom, nil
	}
	return q.Room, nil
}

// room resolves the target room, answering 400 when the query is invalid.
func (h *Handler) room(ginCtx *gin.Context) (string, bool) {
	room, err := ResolveRoom(ginCtx, h.defaultRoom)
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return room, true
}

// @Summary		Get room state
// @Description	Returns the room snapshot: background and every token.
// @Tags			Game
// @Param			room	query		string	false	"Room key"
// @Success		200		{object}	board.Snapshot
// @Router			/api/game/state [get]
func (h *Handler) state(ginCtx *gin.Context) {
	room, ok := h.room(ginCtx)
	if !ok {
		return
	}
	ginCtx.JSON(http.StatusOK, h.svc.GetSnapshot(room))
}

// @Summary		List rooms
// @Description	Every room touched since start-up with its token and viewer counts.
// @Tags			Game
// @Success		200	{array}	board.RoomInfo
// @Router			/api/game/rooms [get]
func (h *Handler) rooms(ginCtx *gin.Context) {
	ginCtx.JSON(http.StatusOK, h.svc.ListRooms())
}

// @Summary		Set background
// @Description	Replaces the room background and notifies every viewer.
// @Tags			Game
// @Param			room	query		string				false	"Room key"
// @Param			body	body		SetBackgroundBody	true	"Background payload"
// @Success		200		{object}	SuccessResponse
// @Failure		400		{object}	ErrorResponse
// @Router			/api/game/background [post]
func (h *Handler) setBackground(ginCtx *gin.Context) {
	room, ok := h.room(ginCtx)
	if !ok {
		return
	}
	var body SetBackgroundBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	h.svc.SetBackground(room, *body.URL)
	ginCtx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// @Summary		Add a token
// @Description	Places a token; an existing token with the same id is replaced.
// @Tags			Game
// @Param			room	query		string			false	"Room key"
// @Param			body	body		AddTokenBody	true	"Token payload"
// @Success		200		{object}	SuccessResponse
// @Failure		400		{object}	ErrorResponse
// @Router			/api/game/token/add [post]
func (h *Handler) addToken(ginCtx *gin.Context) {
	room, ok := h.room(ginCtx)
	if !ok {
		return
	}
	var body AddTokenBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	h.svc.AddToken(room, board.Token{
		ID:       body.ID,
		UserID:   body.UserID,
		Username: body.Username,
		Color:    body.Color,
		X:        *body.X,
		Y:        *body.Y,
	})
	ginCtx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// @Summary		Move a token
// @Description	Moves an existing token. Unknown ids change nothing and report success=false.
// @Tags			Game
// @Param			room	query		string			false	"Room key"
// @Param			body	body		MoveTokenBody	true	"Move payload"
// @Success		200		{object}	SuccessResponse
// @Failure		400		{object}	ErrorResponse
// @Router			/api/game/token/move [post]
func (h *Handler) moveToken(ginCtx *gin.Context) {
	room, ok := h.room(ginCtx)
	if !ok {
		return
	}
	var body MoveTokenBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	_, moved := h.svc.MoveToken(room, body.TokenID, *body.X, *body.Y)
	ginCtx.JSON(http.StatusOK, SuccessResponse{Success: moved})
}
