package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// RunResult は1回の更新実行の結果
type RunResult struct {
	Snapshot     *Snapshot
	Seeded       int
	Fetched      []NewsItem
	SourceErrors []*SourceError
	StartedAt    time.Time
	Duration     time.Duration
}

// Hook は公開が成功した後に呼ばれる後処理（通知など）
//
// Hook のエラーは記録されるだけで、実行結果には影響しない。
type Hook interface {
	Name() string
	AfterRun(ctx context.Context, res *RunResult) error
}

// Updater は取得 → マージ → 公開 をまとめて実行する
//
// 定期実行（Lambda）と手動トリガー（HTTP）はどちらもこれを呼ぶ。
type Updater struct {
	Collector *Collector
	Publisher *Publisher
	Seeds     []SeedItem
	Hooks     []Hook
	Logger    *slog.Logger
}

// Run は1回分の更新を行う。エラーになるのはスナップショットの書き込み失敗だけ。
func (u *Updater) Run(ctx context.Context) (*RunResult, error) {
	log := u.Logger
	if log == nil {
		log = slog.Default()
	}
	started := time.Now()
	now := started
	if u.Collector.Now != nil {
		now = u.Collector.Now()
	}

	collected := u.Collector.Collect(ctx)
	seeds := SeedNews(u.Seeds, now)
	merged := Merge(seeds, collected.Items)

	snap, err := u.Publisher.Publish(ctx, merged)
	if err != nil {
		log.Error("publish failed", slog.Any("err", err))
		return nil, err
	}

	res := &RunResult{
		Snapshot:     snap,
		Seeded:       len(seeds),
		Fetched:      collected.Items,
		SourceErrors: collected.Errors,
		StartedAt:    started,
		Duration:     time.Since(started),
	}

	for _, h := range u.Hooks {
		if err := h.AfterRun(ctx, res); err != nil {
			log.Warn("post-run hook failed", slog.String("hook", h.Name()), slog.Any("err", err))
		}
	}

	log.Info("news update finished",
		slog.Int("seeded", res.Seeded),
		slog.Int("fetched", len(res.Fetched)),
		slog.Int("failed_sources", len(res.SourceErrors)),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}
