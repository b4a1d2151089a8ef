// =============================================================================
// newsctl - ニュース更新の運用CLI
// =============================================================================
//
// 【使い方】
//
//	newsctl                      1回更新して保存先に書き込む
//	newsctl -dry-run             取得だけ行い、保存せずにスナップショットを表示
//	newsctl -dry-run -out a.json 表示の代わりにファイルへ書き出す
//	newsctl -show                保存済みのスナップショットを表示
//	newsctl -check-config        コンテンツ設定を検証して概要を表示
//
// 設定は環境変数（.env があれば読み込む）。-dry-run では通知も送らない。
//
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sharehouse-times/internal/app"
	"sharehouse-times/internal/config"
	"sharehouse-times/internal/logger"
	"sharehouse-times/internal/pipeline"
	"sharehouse-times/internal/store"
)

type options struct {
	dryRun      bool
	show        bool
	checkConfig bool
	out         string
}

func main() {
	var opts options
	flag.BoolVar(&opts.dryRun, "dry-run", false, "collect and print the snapshot without writing it")
	flag.BoolVar(&opts.show, "show", false, "print the stored snapshot")
	flag.BoolVar(&opts.checkConfig, "check-config", false, "validate the content config and print a summary")
	flag.StringVar(&opts.out, "out", "", "write JSON to this path instead of stdout")
	flag.Parse()

	log := logger.New("newsctl")
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not loaded, using environment variables only", slog.Any("err", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, opts, log, os.Stdout); err != nil {
		log.Error("newsctl failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *slog.Logger, stdout io.Writer) error {
	if opts.checkConfig {
		content, err := pipeline.LoadContent(os.Getenv("NEWS_CONFIG_FILE"))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "sources: %d\n", len(content.Sources))
		for _, src := range content.Sources {
			fmt.Fprintf(stdout, "  - %-28s %-6s %s\n", src.Name, src.Kind, src.FeedURL())
		}
		fmt.Fprintf(stdout, "categories: %d\nseeds: %d\n", len(content.Rules.Categories), len(content.Seeds))
		return nil
	}

	// dry-run は保存先の設定が無くても動かせるようにする
	if opts.dryRun {
		os.Setenv("STORE_BACKEND", store.BackendMemory)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appOpts := app.Options{}
	if opts.dryRun {
		appOpts.Store = store.NewMemory()
		appOpts.SkipHooks = true
	}
	a, err := app.New(ctx, cfg, log, appOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.show {
		snap, err := pipeline.LoadSnapshot(ctx, a.Store, cfg.Pipeline.SnapshotKey)
		if err != nil {
			return err
		}
		return emit(stdout, opts.out, snap)
	}

	res, err := a.Updater.Run(ctx)
	if err != nil {
		return err
	}
	for _, se := range res.SourceErrors {
		log.Warn("source failed", slog.String("source", se.Source), slog.Any("err", se.Err))
	}
	if opts.dryRun || opts.out != "" {
		return emit(stdout, opts.out, res.Snapshot)
	}
	log.Info("snapshot updated",
		slog.String("key", cfg.Pipeline.SnapshotKey),
		slog.Int("count", res.Snapshot.UpdateCount),
	)
	return nil
}

func emit(stdout io.Writer, path string, v any) error {
	if path == "" {
		return pipeline.WriteJSON(stdout, v)
	}
	return pipeline.WriteJSONFile(path, v)
}
