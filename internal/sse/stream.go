package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tabletopgo/internal/http/boardhandler"
	"tabletopgo/internal/services/board"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type flushWriter interface {
	io.Writer
	http.Flusher
}

// Streamer serves a room's event stream as text/event-stream.
type Streamer struct {
	board       board.IBoardService
	defaultRoom string
	pingPeriod  time.Duration
}

func NewStreamer(svc board.IBoardService, defaultRoom string, pingPeriod time.Duration) *Streamer {
	return &Streamer{board: svc, defaultRoom: defaultRoom, pingPeriod: pingPeriod}
}

// @Summary		Room event stream
// @Description	Server-sent events: a ping, the game_state snapshot, then the live tail.
// @Tags			Game
// @Param			room	query	string	false	"Room key"
// @Produce		text/event-stream
// @Failure		400	{object}	boardhandler.ErrorResponse
// @Router			/api/game/events [get]
func (s *Streamer) Handle(ginCtx *gin.Context) {
	roomKey, err := boardhandler.ResolveRoom(ginCtx, s.defaultRoom)
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, boardhandler.ErrorResponse{Error: err.Error()})
		return
	}

	sub := s.board.Attach(roomKey)
	defer s.board.Detach(sub)

	h := ginCtx.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	ginCtx.Status(http.StatusOK)

	err = s.Stream(ginCtx.Request.Context(), ginCtx.Writer, sub)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, board.ErrBroadcasterClosed):
		zap.L().Debug("sse.closed", zap.String("room", roomKey), zap.String("sub", sub.ID()))
	default:
		zap.L().Info("sse.stream_ended",
			zap.String("room", roomKey),
			zap.String("sub", sub.ID()),
			zap.Error(err),
		)
	}
}

// Stream writes sub to w until ctx is done, the subscription closes, or a
// write fails. Only one goroutine may drain a subscription.
func (s *Streamer) Stream(ctx context.Context, w flushWriter, sub *board.Subscription) error {
	if err := writePing(w); err != nil {
		return err
	}

	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := writePing(w); err != nil {
				return err
			}
		case evt, ok := <-sub.Events():
			if !ok {
				return sub.Err()
			}
			frame := board.NewFrame(evt)
			if err := write(w, ginsse.Event{Event: frame.Type, Data: frame}); err != nil {
				return err
			}
		}
	}
}

// writePing sends an unnamed message so it reaches EventSource.onmessage.
func writePing(w flushWriter) error {
	return write(w, ginsse.Event{Data: board.PingFrame()})
}

func write(w flushWriter, evt ginsse.Event) error {
	if err := ginsse.Encode(w, evt); err != nil {
		return fmt.Errorf("sse write: %w", err)
	}
	w.Flush()
	return nil
}
