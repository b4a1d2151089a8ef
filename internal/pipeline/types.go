// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはニュース収集パイプライン全体で使用するデータ構造を定義します。
//
// 【このファイルで定義している型】
//   - RawItem:        フィードから抽出した生の記事レコード
//   - NewsItem:       分類済みのニュース記事（スナップショットの要素）
//   - Snapshot:       KVストアに保存される「現在のニュース」全体
//   - Region:         japan / world の地域区分
//   - Classification: カテゴリ判定結果
//
// =============================================================================
package pipeline

import "fmt"

// Region は記事の地域区分
type Region string

const (
	RegionJapan Region = "japan"
	RegionWorld Region = "world"
)

// Valid は既知の地域区分かどうかを返す
func (r Region) Valid() bool {
	return r == RegionJapan || r == RegionWorld
}

// -----------------------------------------------------------------------------
// RawItem - フィードから抽出した生レコード
// -----------------------------------------------------------------------------
//
// パーサーが <item> ごとに生成する。TitleとLinkは必須、それ以外は空でもよい。
// 文字列はタグ除去・トリム済み。Descriptionは maxDescriptionRunes で切り詰め済み。
type RawItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	PubDate     string `json:"pubDate,omitempty"`
	Source      string `json:"source,omitempty"`
}

// -----------------------------------------------------------------------------
// NewsItem - スナップショットに格納される記事
// -----------------------------------------------------------------------------
//
// 【フィールドの説明】
//
//	ID:         スナップショット内で一意な数値ID（シード記事は1000未満の固定値）
//	GUID:       取得記事の内容ハッシュ（タイトル+ソース）。シード記事では空
//	Title:      元記事のタイトル
//	Summary:    説明文から作った要約（最大200文字、なければタイトル）
//	Region:     japan / world
//	Source:     配信元の名前
//	Date:       表示用の日付文字列（例: "10/15(木)"）。ソート用ではない
//	Category:   主カテゴリ
//	Categories: マッチした全カテゴリ（重複なし、必ず1件以上）
//	URL:        元記事へのリンク
type NewsItem struct {
	ID         int      `json:"id"`
	GUID       string   `json:"guid,omitempty"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Region     Region   `json:"region"`
	Source     string   `json:"source"`
	Date       string   `json:"date"`
	Category   string   `json:"category"`
	Categories []string `json:"categories"`
	URL        string   `json:"url"`
}

// -----------------------------------------------------------------------------
// Snapshot - 永続化される集約
// -----------------------------------------------------------------------------
//
// 毎回まるごと上書きされる。Newsはシード記事が先頭、その後に取得記事。
// UpdateCount は len(News) と常に一致する（フロントエンド向けの便宜フィールド）。
type Snapshot struct {
	News        []NewsItem `json:"news"`
	LastUpdated string     `json:"lastUpdated"`
	UpdateCount int        `json:"updateCount"`
}

// Classification はカテゴライザの判定結果
type Classification struct {
	Category   string
	Categories []string
}

// SourceError は1ソース分の取得失敗を表す。実行全体は止めない。
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
