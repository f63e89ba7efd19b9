package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"tabletopgo/internal/http/boardhandler"
	"tabletopgo/internal/services/board"
	"tabletopgo/internal/sse"
	"tabletopgo/internal/ws"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type httpServer struct {
	listenPort      uint16
	shutdownTimeout time.Duration
	srv             *http.Server
	ctx             context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, shutdownTimeout time.Duration,
	handler http.Handler, boardService board.IBoardService) *httpServer {
	srv := &http.Server{
		Handler: handler,
	}
	// Long-lived streams would otherwise hold Shutdown until its deadline.
	srv.RegisterOnShutdown(boardService.Close)

	return &httpServer{
		listenPort:      listenPort,
		shutdownTimeout: shutdownTimeout,
		srv:             srv,
		ctx:             ctx,
	}
}

// NewRouter assembles every route: the REST mutation surface and both event
// stream transports.
func NewRouter(boardService board.IBoardService, streamer *sse.Streamer, wsSrv *ws.WsServer,
	defaultRoom string) *gin.Engine {
	routerEngine := gin.New()

	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// event streams
	routerEngine.GET("/api/game/events", streamer.Handle)
	routerEngine.GET("/api/game/ws", wsSrv.Handle)

	// REST API
	bh := boardhandler.New(boardService, defaultRoom)
	bh.Register(routerEngine)

	return routerEngine
}

// Start blocks serving until Dispose is called.
func (h *httpServer) Start() error {
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	zap.L().Info("http_listen", zap.String("addr", ln.Addr().String()))
	if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to shutdownTimeout for in‑flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), h.shutdownTimeout)
	defer cancel()

	// Ask the server to shut down.
	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn’t finish in time
	}
	return nil
}
