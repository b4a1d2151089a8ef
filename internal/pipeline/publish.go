// =============================================================================
// publish.go - マージと公開
// =============================================================================
//
// シード記事と取得記事を結合し、スナップショットとしてKVストアに書き込みます。
//
// 【ルール】
//   - シード記事が常に先頭（宣言順）、その後に取得記事（取得順）
//   - 並べ替え・相互の重複除去はしない
//   - 固定キー（news_data）を丸ごと上書きする。履歴は持たない
//   - 書き込み失敗は致命的エラーとして呼び出し元に返す
//   - Archive が有効なら、上書きの後に別キーへ複製する（失敗しても警告のみ）
//
// =============================================================================
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sharehouse-times/internal/store"
)

// DefaultSnapshotKey はスナップショットを保存するキー
const DefaultSnapshotKey = "news_data"

// archiveKeyFormat は履歴コピーのキー形式
const archiveKeyFormat = "%s:archive:%s"

// archiveTimeLayout は履歴キーの時刻部分（ナノ秒まで固定幅、辞書順 = 時刻順）
const archiveTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Merge はシード記事と取得記事を連結する
func Merge(seeds, fetched []NewsItem) []NewsItem {
	out := make([]NewsItem, 0, len(seeds)+len(fetched))
	out = append(out, seeds...)
	out = append(out, fetched...)
	return out
}

// NewSnapshot はスナップショットを組み立てる
func NewSnapshot(items []NewsItem, generatedAt time.Time) *Snapshot {
	if items == nil {
		items = []NewsItem{}
	}
	return &Snapshot{
		News:        items,
		LastUpdated: generatedAt.UTC().Format(time.RFC3339),
		UpdateCount: len(items),
	}
}

// Publisher はスナップショットをストアに書き込む
type Publisher struct {
	Store   store.KV
	Key     string
	Archive bool
	Now     func() time.Time
	Logger  *slog.Logger
}

// Publish は items をスナップショットとして上書き保存する
func (p *Publisher) Publish(ctx context.Context, items []NewsItem) (*Snapshot, error) {
	if p.Store == nil {
		return nil, errors.New("publish: no store configured")
	}
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	snap := NewSnapshot(items, now)
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := p.key()
	if err := p.Store.Put(ctx, key, body); err != nil {
		return nil, fmt.Errorf("write snapshot %s: %w", key, err)
	}

	log := p.logger()
	log.Info("snapshot published",
		slog.String("key", key),
		slog.Int("items", snap.UpdateCount),
		slog.String("last_updated", snap.LastUpdated),
	)

	if p.Archive {
		archiveKey := fmt.Sprintf(archiveKeyFormat, key, now.UTC().Format(archiveTimeLayout))
		if err := p.Store.Put(ctx, archiveKey, body); err != nil {
			log.Warn("snapshot archive failed", slog.String("key", archiveKey), slog.Any("err", err))
		}
	}
	return snap, nil
}

func (p *Publisher) key() string {
	if p.Key != "" {
		return p.Key
	}
	return DefaultSnapshotKey
}

func (p *Publisher) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// LoadSnapshot は保存済みのスナップショットを読む
//
// キーが無い場合はエラーにせず、空のスナップショットを返す（読み手側の縮退動作）。
func LoadSnapshot(ctx context.Context, kv store.KV, key string) (*Snapshot, error) {
	if key == "" {
		key = DefaultSnapshotKey
	}
	body, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return &Snapshot{News: []NewsItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	if snap.News == nil {
		snap.News = []NewsItem{}
	}
	return &snap, nil
}
