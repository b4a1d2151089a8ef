// =============================================================================
// sources.go - ニュースソース定義と取得処理
// =============================================================================
//
// ニュースソースの設定と、種類ごとの取得関数（レジストリ）を定義します。
//
// 【ソースの種類】
//   - rss:    固定URLのRSS/RDF/Atomフィード
//   - search: 検索クエリを埋め込むRSS（例: Google News 検索RSS）
//             URL中の "{query}" を Query のURLエンコード値で置き換える
//   - html:   一覧ページをCSSセレクタでスクレイピング（goquery）
//
// 【エラー方針】
//
//	取得関数は HTTP 非2xx・通信失敗・本文読み込み失敗をエラーとして返す。
//	呼び出し側（Collector）はログに残してそのソースを0件として扱う。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ソース種別
const (
	KindRSS    = "rss"
	KindSearch = "search"
	KindHTML   = "html"
)

// maxBodyBytes はレスポンス本文の読み込み上限
const maxBodyBytes = 10 << 20

// DefaultUserAgent はデスクトップブラウザの User-Agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// SourceConfig は1つのニュースソースの設定
type SourceConfig struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	URL        string         `yaml:"url"`
	Query      string         `yaml:"query,omitempty"`
	Region     Region         `yaml:"region,omitempty"`
	SourceName string         `yaml:"sourceName,omitempty"`
	Selectors  *HTMLSelectors `yaml:"selectors,omitempty"`
}

// HTMLSelectors は html ソースのCSSセレクタ
//
// Item は記事1件を囲む要素。Title/Link/Description/Date は Item からの相対セレクタ。
// Title が空なら Item 自身のテキスト、Link が空なら Item 自身の href を使う。
// Date の要素に datetime 属性があればそれを優先する。
type HTMLSelectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title,omitempty"`
	Link        string `yaml:"link,omitempty"`
	Description string `yaml:"description,omitempty"`
	Date        string `yaml:"date,omitempty"`
}

// FeedURL は実際にリクエストするURLを返す
func (s SourceConfig) FeedURL() string {
	if s.Kind == KindSearch {
		return strings.ReplaceAll(s.URL, "{query}", url.QueryEscape(s.Query))
	}
	return s.URL
}

// DisplayName はソース名（ログ・記事のフォールバック用）
func (s SourceConfig) DisplayName() string {
	if s.SourceName != "" {
		return s.SourceName
	}
	return s.Name
}

// FetchConfig はHTTP取得時の設定
type FetchConfig struct {
	UserAgent string        // User-Agentヘッダー
	Timeout   time.Duration // 1リクエストあたりのタイムアウト
	Client    *http.Client  // 共有HTTPクライアント
}

// DefaultFetchConfig はデフォルトの取得設定を返す
func DefaultFetchConfig() FetchConfig {
	timeout := 20 * time.Second
	return FetchConfig{
		UserAgent: DefaultUserAgent,
		Timeout:   timeout,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// =============================================================================
// ソースレジストリ
// =============================================================================

// sourceCollector は種別ごとの取得関数
type sourceCollector func(ctx context.Context, src SourceConfig, cfg FetchConfig) ([]RawItem, error)

var sourceCollectors = map[string]sourceCollector{
	KindRSS:    collectFeed,
	KindSearch: collectFeed,
	KindHTML:   collectHTML,
}

// knownKind は登録済みのソース種別かどうかを返す
func knownKind(kind string) bool {
	_, ok := sourceCollectors[kind]
	return ok
}

// fetchSource はソース種別に応じた取得関数を呼ぶ
func fetchSource(ctx context.Context, src SourceConfig, cfg FetchConfig) ([]RawItem, error) {
	collector, ok := sourceCollectors[src.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
	return collector(ctx, src, cfg)
}

// collectFeed は rss / search ソースを取得してパースする
func collectFeed(ctx context.Context, src SourceConfig, cfg FetchConfig) ([]RawItem, error) {
	body, err := fetchBody(ctx, src.FeedURL(), cfg, "application/rss+xml, application/rdf+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	if err != nil {
		return nil, err
	}
	return ParseFeed(body), nil
}

// collectHTML は一覧ページをセレクタでスクレイピングする
func collectHTML(ctx context.Context, src SourceConfig, cfg FetchConfig) ([]RawItem, error) {
	if src.Selectors == nil || src.Selectors.Item == "" {
		return nil, fmt.Errorf("html source %s has no item selector", src.Name)
	}
	body, err := fetchBody(ctx, src.FeedURL(), cfg, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}
	return scrapeItems(doc, src.FeedURL(), *src.Selectors), nil
}

// scrapeItems は goquery ドキュメントから RawItem を取り出す
func scrapeItems(doc *goquery.Document, pageURL string, sel HTMLSelectors) []RawItem {
	var out []RawItem
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		titleSel := s
		if sel.Title != "" {
			titleSel = s.Find(sel.Title).First()
		}
		linkSel := s
		if sel.Link != "" {
			linkSel = s.Find(sel.Link).First()
		}
		href, _ := linkSel.Attr("href")

		// DOMのテキストは表示どおり空白をまとめる
		raw := RawItem{
			Title: normalizeWhitespace(titleSel.Text()),
			Link:  resolveURL(pageURL, href),
		}
		if sel.Description != "" {
			raw.Description = s.Find(sel.Description).First().Text()
		}
		if sel.Date != "" {
			dateSel := s.Find(sel.Date).First()
			if dt, ok := dateSel.Attr("datetime"); ok && dt != "" {
				raw.PubDate = dt
			} else {
				raw.PubDate = dateSel.Text()
			}
		}
		if r, ok := finishRawItem(raw); ok {
			out = append(out, r)
		}
	})
	return out
}

// fetchBody はGETして本文を返す。2xx以外はエラー。
//
// cfg.Timeout はリクエスト単位で効く。
func fetchBody(ctx context.Context, u string, cfg FetchConfig, accept string) ([]byte, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "ja,en-US;q=0.8,en;q=0.6")

	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return body, nil
}
