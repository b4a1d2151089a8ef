// =============================================================================
// rules.go - キーワードによる分類ルール
// =============================================================================
//
// 記事テキストに対する3種類の判定をまとめています。すべて純粋関数で、
// Rules 自体は読み取り専用として扱います（複数の実行から共有してよい）。
//
// 【判定の種類】
//   - IsRelevant: 関連性フィルタ（シェアハウス・賃貸系の記事だけを通す）
//   - Categorize: カテゴリ判定（主カテゴリ + マッチした全カテゴリ）
//   - Region:     地域判定（japan / world）
//
// 【マッチング方式】
//
//	タイトル + " " + 説明文 を小文字化し、キーワード（小文字化）の部分一致を見る。
//	日本語は大文字小文字の影響を受けないので、実質的に英字キーワード用の処理。
//
// =============================================================================
package pipeline

import "strings"

// CategoryRule はカテゴリキーとそのトリガーキーワード
type CategoryRule struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
}

// Rules はキーワード表一式
//
// Categories の並び順がマッチング時の走査順になる。
// Priority は主カテゴリ選択の優先順（先頭ほど優先）。
type Rules struct {
	Categories        []CategoryRule `yaml:"categories"`
	Priority          []string       `yaml:"priority"`
	DefaultCategory   string         `yaml:"defaultCategory"`
	WorldKeywords     []string       `yaml:"worldKeywords"`
	RelevanceKeywords []string       `yaml:"relevanceKeywords"`
}

// defaultCategory は DefaultCategory 未設定時のフォールバック
const defaultCategory = "market"

// matchText は判定対象のテキストを作る
func matchText(title, description string) string {
	return strings.ToLower(title + " " + description)
}

// containsAny は text（小文字化済み）がいずれかのキーワードを含むかを返す
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IsRelevant は記事がサイトの対象範囲（住まい・賃貸・シェアハウス）かどうかを返す
func (r *Rules) IsRelevant(item RawItem) bool {
	return containsAny(matchText(item.Title, item.Description), r.RelevanceKeywords)
}

// Region は地域を判定する。海外キーワードがなければ japan。
func (r *Rules) Region(title, description string) Region {
	if containsAny(matchText(title, description), r.WorldKeywords) {
		return RegionWorld
	}
	return RegionJapan
}

// Categorize はカテゴリを判定する
//
// 全カテゴリを表の順に調べ、キーワードが1つでも含まれればそのカテゴリを記録する。
// 主カテゴリは Priority の順で最初にマッチしたもの。Priority に載っていない
// カテゴリしかマッチしなかった場合は、表の順で最初のもの。
// 何もマッチしなければ {DefaultCategory, [DefaultCategory]}。
func (r *Rules) Categorize(title, description string) Classification {
	text := matchText(title, description)

	var matched []string
	for _, rule := range r.Categories {
		if containsAny(text, rule.Keywords) {
			matched = append(matched, rule.Key)
		}
	}
	matched = uniqStrings(matched)

	if len(matched) == 0 {
		def := r.defaultCategory()
		return Classification{Category: def, Categories: []string{def}}
	}

	primary := matched[0]
	for _, key := range r.Priority {
		if containsString(matched, key) {
			primary = key
			break
		}
	}
	return Classification{Category: primary, Categories: matched}
}

func (r *Rules) defaultCategory() string {
	if r.DefaultCategory != "" {
		return r.DefaultCategory
	}
	return defaultCategory
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
