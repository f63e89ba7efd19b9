package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tabletopgo/internal/http/boardhandler"
	"tabletopgo/internal/services/board"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be < pongWait
)

type WsServer struct {
	board       board.IBoardService
	router      *Router
	upgrader    websocket.Upgrader
	defaultRoom string
	readLimit   int64
}

func NewWsServer(svc board.IBoardService, defaultRoom string, readLimit int64) *WsServer {
	srv := &WsServer{
		board:  svc,
		router: NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // dev‑only
		},
		defaultRoom: defaultRoom,
		readLimit:   readLimit,
	}
	srv.registerHandlers() // ← all WS commands configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

// @Summary		Room event stream (WebSocket)
// @Description	Pushes ping, game_state and the live tail; accepts set_background, add_token and move_token commands.
// @Tags			Game
// @Param			room	query	string	false	"Room key"
// @Failure		400	{object}	boardhandler.ErrorResponse
// @Router			/api/game/ws [get]
func (s *WsServer) Handle(ginCtx *gin.Context) {
	roomKey, err := boardhandler.ResolveRoom(ginCtx, s.defaultRoom)
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, boardhandler.ErrorResponse{Error: err.Error()})
		return
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(s.readLimit)

	conn := &clientConn{rawConn: rawConn}
	defer conn.close()

	sub := s.board.Attach(roomKey)
	defer s.board.Detach(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.reader(cancel, &ConnContext{Room: roomKey}, conn)

	err = s.writer(ctx, sub, conn)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, board.ErrBroadcasterClosed):
		zap.L().Debug("ws.closed", zap.String("room", roomKey), zap.String("sub", sub.ID()))
	default:
		zap.L().Info("ws.stream_ended",
			zap.String("room", roomKey),
			zap.String("sub", sub.ID()),
			zap.Error(err),
		)
	}
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	Register(
		s.router,
		"set_background",
		func(ctx context.Context, cc *ConnContext, req SetBackgroundRequest) (AckBody, error) {
			s.board.SetBackground(cc.Room, *req.URL)
			return AckBody{Success: true}, nil
		},
	)
	Register(
		s.router,
		"add_token",
		func(ctx context.Context, cc *ConnContext, req AddTokenRequest) (AckBody, error) {
			s.board.AddToken(cc.Room, board.Token{
				ID:       req.ID,
				UserID:   req.UserID,
				Username: req.Username,
				Color:    req.Color,
				X:        *req.X,
				Y:        *req.Y,
			})
			return AckBody{Success: true}, nil
		},
	)
	Register(
		s.router,
		"move_token",
		func(ctx context.Context, cc *ConnContext, req MoveTokenRequest) (AckBody, error) {
			_, ok := s.board.MoveToken(cc.Room, req.TokenID, *req.X, *req.Y)
			return AckBody{Success: ok}, nil
		},
	)
}

// writer drains sub onto the connection. It owns the subscription; the
// handler detaches once it returns.
func (s *WsServer) writer(ctx context.Context, sub *board.Subscription, conn *clientConn) error {
	if err := conn.writeJSON(board.PingFrame()); err != nil {
		return err
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return err
			}
		case evt, ok := <-sub.Events():
			if !ok {
				err := sub.Err()
				if errors.Is(err, board.ErrSubscriptionDegraded) {
					conn.closeWith(websocket.CloseTryAgainLater, "resync required")
				} else {
					conn.closeWith(websocket.CloseGoingAway, "stream closed")
				}
				return err
			}
			if err := conn.writeJSON(board.NewFrame(evt)); err != nil {
				return err
			}
		}
	}
}

// reader handles inbound commands until the peer goes away, then cancels the
// writer.
func (s *WsServer) reader(cancel context.CancelFunc, cc *ConnContext, conn *clientConn) {
	defer cancel()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.writeJSON(errorFrame(err))
			continue
		}

		ctx, cancelDispatch := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancelDispatch()

		// ---- error -> {"type":"error", "data":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(errorFrame(err))
			continue
		}

		// ---- success -> {"type":"<evt>-ack", "data":{...}} --------
		_ = conn.writeJSON(board.Frame{Type: env.Type + "-ack", Data: res})
	}
}

func errorFrame(err error) board.Frame {
	return board.Frame{Type: "error", Data: ErrorBody{Error: err.Error()}}
}
