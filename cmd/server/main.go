// server はセルフホスト用のHTTPサーバー。
//
//	GET  /health           死活確認
//	GET  /api/news         現在のスナップショット
//	POST /api/update-news  手動更新（UPDATE_TOKEN があれば Bearer 必須）
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sharehouse-times/internal/app"
	"sharehouse-times/internal/config"
	"sharehouse-times/internal/httpapi"
	"sharehouse-times/internal/logger"
)

func main() {
	log := logger.New("server")
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not loaded, using environment variables only", slog.Any("err", err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

// run はアプリを組み立ててサーバーを動かす。戻る前に必ず a.Close() する。
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	srv := &httpapi.Server{
		Store:       a.Store,
		Key:         cfg.Pipeline.SnapshotKey,
		Runner:      a.Updater,
		UpdateToken: cfg.API.UpdateToken,
		Log:         log,
	}
	httpServer := &http.Server{
		Addr:              cfg.API.BindAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// 手動更新の完了まで待つ
		WriteTimeout: 10 * time.Minute,
	}
	return serve(ctx, httpServer, log)
}

// serve は ctx が終わるかリスナーが失敗するまでブロックする
//
// ctx 終了時はグレースフルシャットダウンして nil を返す。
func serve(ctx context.Context, httpServer *http.Server, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
