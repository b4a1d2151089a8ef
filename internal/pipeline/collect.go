// =============================================================================
// collect.go - 取得オーケストレーター
// =============================================================================
//
// 設定されたソースを順番に取得し、1本の記事リストにまとめます。
//
// 【1ソースあたりの処理】
//
//	取得 → パース → 関連性フィルタ → 重複除去 → 日付・カテゴリ・地域・ID付与
//
// 【方針】
//   - ソースは設定順に1つずつ取得する（並列化しない）
//   - 1ソースの失敗は記録して0件扱い。実行全体は止めない
//   - MaxItems 件に達したら残りのソースは取得しない
//   - 0件でもエラーではない（シード記事だけのスナップショットになる）
//
// =============================================================================
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultMaxItems は1回の実行で取得する記事数の上限
const DefaultMaxItems = 50

// Collector は取得パイプラインの設定一式
type Collector struct {
	Sources  []SourceConfig
	Rules    *Rules
	Fetch    FetchConfig
	MaxItems int
	Now      func() time.Time
	Logger   *slog.Logger
}

// CollectResult は取得結果
type CollectResult struct {
	Items  []NewsItem
	Errors []*SourceError

	// 集計（ログ・通知用）
	Fetched    int // パースできた件数
	Irrelevant int // 関連性フィルタで落とした件数
	Duplicates int // 重複で落とした件数
	Skipped    int // 上限到達で取得しなかったソース数
}

// Collect は全ソースを順に取得する
func (c *Collector) Collect(ctx context.Context) *CollectResult {
	log := c.logger()
	now := c.now()
	maxItems := c.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	result := &CollectResult{}
	seen := NewDeduper()
	ids := newIDAllocator()

	for i, src := range c.Sources {
		if len(result.Items) >= maxItems {
			result.Skipped = len(c.Sources) - i
			log.Info("max items reached, skipping remaining sources",
				slog.Int("max_items", maxItems),
				slog.Int("skipped", result.Skipped),
			)
			break
		}
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, &SourceError{Source: src.Name, Err: err})
			log.Warn("collection canceled", slog.String("source", src.Name), slog.Any("err", err))
			break
		}

		raws, err := fetchSource(ctx, src, c.Fetch)
		if err != nil {
			result.Errors = append(result.Errors, &SourceError{Source: src.Name, Err: err})
			log.Warn("source failed",
				slog.String("source", src.Name),
				slog.String("url", src.FeedURL()),
				slog.Any("err", err),
			)
			continue
		}
		result.Fetched += len(raws)

		admitted := 0
		for _, raw := range raws {
			if len(result.Items) >= maxItems {
				break
			}
			if !c.Rules.IsRelevant(raw) {
				result.Irrelevant++
				continue
			}
			if !seen.Admit(raw.Title) {
				result.Duplicates++
				continue
			}
			result.Items = append(result.Items, c.buildItem(raw, src, now, ids))
			admitted++
		}

		log.Info("source collected",
			slog.String("source", src.Name),
			slog.Int("parsed", len(raws)),
			slog.Int("admitted", admitted),
		)
	}

	log.Info("collection finished",
		slog.Int("items", len(result.Items)),
		slog.Int("failed_sources", len(result.Errors)),
		slog.Int("irrelevant", result.Irrelevant),
		slog.Int("duplicates", result.Duplicates),
	)
	return result
}

// buildItem は採用した RawItem を NewsItem に変換する
func (c *Collector) buildItem(raw RawItem, src SourceConfig, now time.Time, ids *idAllocator) NewsItem {
	source, title := resolveSource(raw, src)

	published := resolvePublished(raw.PubDate, now)
	class := c.Rules.Categorize(title, raw.Description)

	region := c.Rules.Region(title, raw.Description)
	if src.Region == RegionWorld {
		region = RegionWorld
	}

	summary := truncateString(raw.Description, maxDescriptionRunes)
	if summary == "" {
		summary = title
	}

	guid := ItemGUID(title, source)
	return NewsItem{
		ID:         ids.allocate(guid),
		GUID:       guid.String(),
		Title:      title,
		Summary:    summary,
		Region:     region,
		Source:     source,
		Date:       FormatDisplayDate(published),
		Category:   class.Category,
		Categories: class.Categories,
		URL:        raw.Link,
	}
}

// resolveSource は配信元名を決め、タイトル末尾の " - 配信元" を取り除く
//
// <source> 要素があればそれを使い、タイトル末尾が同じ名前ならそこだけ削る。
// 無ければソース設定の名前を使い、タイトルはそのまま残す。
func resolveSource(raw RawItem, src SourceConfig) (source, title string) {
	title = raw.Title
	source = raw.Source
	if source == "" {
		return src.DisplayName(), title
	}
	suffix := " - " + source
	if strings.HasSuffix(title, suffix) && len(title) > len(suffix) {
		title = strings.TrimSpace(strings.TrimSuffix(title, suffix))
	}
	return source, title
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
