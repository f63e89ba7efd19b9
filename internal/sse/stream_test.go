package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tabletopgo/internal/services/board"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Event string          `json:"-"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
}

// readFrame reads one SSE message (up to the blank line) and decodes its data.
func readFrame(t *testing.T, r *bufio.Reader) frame {
	t.Helper()
	var f frame
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return f
		case strings.HasPrefix(line, "event:"):
			f.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &f))
		}
	}
}

func parseFrames(t *testing.T, body string) []frame {
	t.Helper()
	r := bufio.NewReader(strings.NewReader(body))
	var out []frame
	for {
		if _, err := r.Peek(1); err != nil {
			return out
		}
		out = append(out, readFrame(t, r))
	}
}

func TestHandleStreamsSnapshotThenLiveTail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := board.NewBoardService(16)
	svc.AddToken("table", board.Token{ID: "t1", UserID: "u1", Username: "Ann", Color: "#ff0000", X: 100, Y: 100})

	engine := gin.New()
	engine.GET("/events", NewStreamer(svc, board.DefaultRoom, time.Minute).Handle)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?room=table", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	r := bufio.NewReader(resp.Body)

	ping := readFrame(t, r)
	assert.Equal(t, "", ping.Event)
	assert.Equal(t, board.EventPing, ping.Type)

	snap := readFrame(t, r)
	assert.Equal(t, board.EventGameState, snap.Event)
	assert.JSONEq(t,
		`{"background":"","tokens":[{"id":"t1","userId":"u1","username":"Ann","color":"#ff0000","x":100,"y":100}]}`,
		string(snap.Data))

	_, ok := svc.MoveToken("table", "t1", 132, 100)
	require.True(t, ok)
	moved := readFrame(t, r)
	assert.Equal(t, board.EventTokenMoved, moved.Event)
	assert.JSONEq(t, `{"tokenId":"t1","x":132,"y":100}`, string(moved.Data))

	svc.SetBackground("table", "map.png")
	bg := readFrame(t, r)
	assert.Equal(t, board.EventBackgroundChanged, bg.Type)
	assert.JSONEq(t, `{"url":"map.png"}`, string(bg.Data))

	assert.Equal(t, 1, svc.Viewers("table"))
	cancel()
	assert.Eventually(t, func() bool { return svc.Viewers("table") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleUsesDefaultRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := board.NewBoardService(4)
	svc.SetBackground("lobby", "lobby.png")

	engine := gin.New()
	engine.GET("/events", NewStreamer(svc, "lobby", time.Minute).Handle)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	readFrame(t, r)
	snap := readFrame(t, r)
	assert.JSONEq(t, `{"background":"lobby.png","tokens":[]}`, string(snap.Data))
}

func TestStreamEndsWhenSubscriptionDegrades(t *testing.T) {
	svc := board.NewBoardService(1)
	svc.AddToken("r", board.Token{ID: "t1"})
	sub := svc.Attach("r")
	defer svc.Detach(sub)

	svc.MoveToken("r", "t1", 1, 1)
	svc.MoveToken("r", "t1", 2, 2) // overflows the one-slot buffer

	rec := httptest.NewRecorder()
	err := NewStreamer(svc, board.DefaultRoom, time.Minute).Stream(context.Background(), rec, sub)
	assert.ErrorIs(t, err, board.ErrSubscriptionDegraded)

	frames := parseFrames(t, rec.Body.String())
	require.Len(t, frames, 3)
	assert.Equal(t, board.EventPing, frames[0].Type)
	assert.Equal(t, board.EventGameState, frames[1].Type)
	assert.Equal(t, board.EventTokenMoved, frames[2].Type)
	assert.JSONEq(t, `{"tokenId":"t1","x":1,"y":1}`, string(frames[2].Data))
}

func TestStreamSendsKeepalivePings(t *testing.T) {
	svc := board.NewBoardService(4)
	sub := svc.Attach("r")
	defer svc.Detach(sub)
	<-sub.Events() // snapshot

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	err := NewStreamer(svc, board.DefaultRoom, 20*time.Millisecond).Stream(ctx, rec, sub)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	frames := parseFrames(t, rec.Body.String())
	assert.GreaterOrEqual(t, len(frames), 2)
	for _, f := range frames {
		assert.Equal(t, board.EventPing, f.Type)
	}
}

func TestHandleEmptyRoomQueryUsesDefaultRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := board.NewBoardService(4)

	engine := gin.New()
	engine.GET("/events", NewStreamer(svc, board.DefaultRoom, time.Minute).Handle)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?room=", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	readFrame(t, r)
	readFrame(t, r)
	assert.Equal(t, 1, svc.Viewers(board.DefaultRoom))
	assert.Equal(t, 0, svc.Viewers(""))

	svc.SetBackground(board.DefaultRoom, "map.png")
	bg := readFrame(t, r)
	assert.Equal(t, board.EventBackgroundChanged, bg.Event)
	assert.JSONEq(t, `{"url":"map.png"}`, string(bg.Data))
}

func TestHandleRejectsOversizeRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := board.NewBoardService(4)

	engine := gin.New()
	engine.GET("/events", NewStreamer(svc, board.DefaultRoom, time.Minute).Handle)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events?room="+strings.Repeat("x", 129), nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
	assert.Empty(t, svc.ListRooms())
}
