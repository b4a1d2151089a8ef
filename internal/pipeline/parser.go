// =============================================================================
// parser.go - RSS/RDF/Atom パーサー
// =============================================================================
//
// フィード本文（XML）から <item> を抽出して RawItem のスライスに変換します。
//
// 【処理の流れ】
//  1. gofeed.DetectFeedType でフォーマットを判定
//  2. RSS 2.0 / RDF(RSS 1.0) → gofeed/rss パーサー（<source> と dc:date を保持）
//  3. Atom                   → gofeed 汎用パーサー
//  4. 判定不能・パース失敗   → 正規表現による <item> ブロック走査（部分抽出）
//
// 【保証】
//   - エラーは返さない。壊れたXMLからは取り出せた分だけ返す（全滅なら空）
//   - Title と Link が両方ある item だけを返す
//   - 文字列はタグ除去・エンティティデコード・トリム済み
//   - Title / Source は内部の空白を保つ。Description だけ空白を1つにまとめる
//   - Description は maxDescriptionRunes 文字で切り詰め
//
// =============================================================================
package pipeline

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// maxDescriptionRunes は抽出時の説明文の上限文字数
const maxDescriptionRunes = 200

var (
	reItemBlock = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>(.*?)</item>`)
	reCDATA     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	reTagCache  = map[string]*regexp.Regexp{}
)

func init() {
	for _, tag := range []string{"title", "link", "description", "pubDate", "source", "dc:date"} {
		reTagCache[tag] = regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `(?:\s[^>]*)?>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	}
}

// ParseFeed はフィード本文から RawItem を抽出する
func ParseFeed(body []byte) []RawItem {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		if items, err := parseRSS(body); err == nil {
			return items
		}
	case gofeed.FeedTypeAtom:
		if items, err := parseAtom(body); err == nil {
			return items
		}
	}

	// gofeed が受け付けない壊れたXMLでも、読める <item> は拾う
	return scanItems(body)
}

// parseRSS は RSS 2.0 / RDF を gofeed/rss でパースする
func parseRSS(body []byte) ([]RawItem, error) {
	fp := &rss.Parser{}
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		raw := RawItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			PubDate:     item.PubDate,
		}
		if raw.Description == "" {
			raw.Description = item.Content
		}
		if raw.PubDate == "" && item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0 {
			raw.PubDate = item.DublinCoreExt.Date[0]
		}
		if item.Source != nil {
			raw.Source = item.Source.Title
		}
		if r, ok := finishRawItem(raw); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// parseAtom は Atom を gofeed 汎用パーサーでパースする
func parseAtom(body []byte) ([]RawItem, error) {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		raw := RawItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			PubDate:     item.Published,
		}
		if raw.Description == "" {
			raw.Description = item.Content
		}
		if raw.PubDate == "" {
			raw.PubDate = item.Updated
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			raw.Source = item.Authors[0].Name
		}
		if r, ok := finishRawItem(raw); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// scanItems は正規表現で <item>...</item> ブロックを走査する
//
// 名前空間もスキーマも見ない。閉じタグのある item だけを対象にするため、
// 途中で切れた文書でも手前の item は取り出せる。
func scanItems(body []byte) []RawItem {
	blocks := reItemBlock.FindAllSubmatch(body, -1)
	out := make([]RawItem, 0, len(blocks))
	for _, m := range blocks {
		block := string(m[1])
		raw := RawItem{
			Title:       tagText(block, "title"),
			Link:        tagText(block, "link"),
			Description: tagText(block, "description"),
			PubDate:     tagText(block, "pubDate"),
			Source:      tagText(block, "source"),
		}
		if raw.PubDate == "" {
			raw.PubDate = tagText(block, "dc:date")
		}
		if r, ok := finishRawItem(raw); ok {
			out = append(out, r)
		}
	}
	return out
}

// tagText はブロック内の最初の <tag> の中身を返す
//
// CDATA セクションは位置に関係なく中身に置き換える（前後の地の文と混在してもよい）。
func tagText(block, tag string) string {
	re, ok := reTagCache[tag]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return reCDATA.ReplaceAllString(m[1], "$1")
}

// finishRawItem はテキストを整形し、必須項目のない item を落とす
func finishRawItem(raw RawItem) (RawItem, bool) {
	raw.Title = cleanLine(raw.Title)
	raw.Link = strings.TrimSpace(cleanHTMLTags(raw.Link))
	raw.Description = truncateString(cleanText(raw.Description), maxDescriptionRunes)
	raw.PubDate = strings.TrimSpace(raw.PubDate)
	raw.Source = cleanLine(raw.Source)
	if raw.Title == "" || raw.Link == "" {
		return RawItem{}, false
	}
	return raw, true
}
