package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tabletopgo/internal/config"
	"tabletopgo/internal/http/http_server"
	"tabletopgo/internal/services/board"
	"tabletopgo/internal/sse"
	"tabletopgo/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var boardService board.IBoardService

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))
	gin.SetMode(cfg.GinMode)

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. In-memory board: room state + per-room fan-out
	boardService = board.NewBoardService(cfg.SubscriptionBuffer)

	// 4. Event stream transports
	streamer := sse.NewStreamer(boardService, cfg.DefaultRoom, cfg.StreamPingPeriod)
	wsSrv := ws.NewWsServer(boardService, cfg.DefaultRoom, cfg.WsReadLimit)

	// 5. HTTP server
	router := http_server.NewRouter(boardService, streamer, wsSrv, cfg.DefaultRoom)
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, cfg.ShutdownTimeout, router, boardService)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		Log.Info("Shutting down")
		return httpServer.Dispose()
	})
	if err := g.Wait(); err != nil {
		Log.Fatal("HTTP server stopped", zap.Error(err))
	}
	Log.Info("Server exited gracefully")
}
