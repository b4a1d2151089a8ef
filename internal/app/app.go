// Package app は設定から更新処理一式を組み立てる。
//
// Lambda・HTTPサーバー・CLI のどれもここを通して同じ Updater を使う。
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sharehouse-times/internal/config"
	"sharehouse-times/internal/notify"
	"sharehouse-times/internal/pipeline"
	"sharehouse-times/internal/store"
)

// App は組み立て済みの依存関係
type App struct {
	Config  *config.Config
	Content *pipeline.Content
	Store   store.KV
	Updater *pipeline.Updater
	Logger  *slog.Logger
}

// Options は組み立て時の上書き設定
type Options struct {
	// Store を指定すると STORE_BACKEND を無視してこれを使う（dry-run・テスト用）
	Store store.KV
	// SkipHooks が true なら通知を組み込まない
	SkipHooks bool
	Now       func() time.Time
}

// New は設定からアプリケーションを組み立てる
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	content, err := pipeline.LoadContent(cfg.Pipeline.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	kv := opts.Store
	if kv == nil {
		kv, err = store.Open(ctx, cfg.Pipeline.Store)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	fetch := pipeline.DefaultFetchConfig()
	fetch.Timeout = cfg.Pipeline.FetchTimeout
	fetch.Client.Timeout = cfg.Pipeline.FetchTimeout
	if cfg.Pipeline.UserAgent != "" {
		fetch.UserAgent = cfg.Pipeline.UserAgent
	}

	rules := content.Rules
	updater := &pipeline.Updater{
		Collector: &pipeline.Collector{
			Sources:  content.Sources,
			Rules:    &rules,
			Fetch:    fetch,
			MaxItems: cfg.Pipeline.MaxItems,
			Now:      opts.Now,
			Logger:   logger.With("component", "collector"),
		},
		Publisher: &pipeline.Publisher{
			Store:   kv,
			Key:     cfg.Pipeline.SnapshotKey,
			Archive: cfg.Pipeline.Archive,
			Now:     opts.Now,
			Logger:  logger.With("component", "publisher"),
		},
		Seeds:  content.Seeds,
		Logger: logger,
	}

	if !opts.SkipHooks {
		hooks, err := buildHooks(cfg.Notify, logger)
		if err != nil {
			kv.Close()
			return nil, err
		}
		updater.Hooks = hooks
	}

	logger.Info("pipeline configured",
		slog.Int("sources", len(content.Sources)),
		slog.Int("seeds", len(content.Seeds)),
		slog.String("store", cfg.Pipeline.Store.Backend),
		slog.Int("hooks", len(updater.Hooks)),
	)

	return &App{
		Config:  cfg,
		Content: content,
		Store:   kv,
		Updater: updater,
		Logger:  logger,
	}, nil
}

// buildHooks は設定済みの通知だけを組み込む
func buildHooks(n config.Notify, logger *slog.Logger) ([]pipeline.Hook, error) {
	var hooks []pipeline.Hook
	if n.EmailEnabled() {
		email, err := notify.NewEmailNotifier(n.EmailFrom, n.EmailPassword, n.EmailTo, logger.With("hook", "email"))
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, email)
	}
	if n.NotionEnabled() {
		clipper, err := notify.NewNotionClipper(n.NotionToken, n.NotionDatabaseID, logger.With("hook", "notion"))
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, clipper)
	}
	return hooks, nil
}

// Close はストアを閉じる
func (a *App) Close() error {
	return a.Store.Close()
}
