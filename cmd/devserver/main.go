package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gunvolt24/wb_storefront/config"
	"github.com/Gunvolt24/wb_storefront/internal/devserver"
	"github.com/Gunvolt24/wb_storefront/pkg/logger"
	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
	"github.com/joho/godotenv"
)

// Локальный имитатор бэкенда маркетплейса: REST + websocket-канал заказов.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logg, cleanup, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		panic(err)
	}
	defer func() { _ = cleanup() }()

	metrics.MustRegister()

	srv := devserver.New(cfg.DevServer, cfg.Fetch, logg)
	httpSrv := &http.Server{
		Addr:    cfg.DevServer.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logg.Infof(ctx, "dev server starting (addr=%s)", cfg.DevServer.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Warnf(ctx, "dev server stopped: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	cancel()

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = httpSrv.Shutdown(shCtx)
}
