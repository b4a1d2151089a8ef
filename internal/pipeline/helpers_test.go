package pipeline

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newResponse(status int, body string, r *http.Request) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    r,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRules は小さな合成キーワード表
func testRules() *Rules {
	return &Rules{
		Categories: []CategoryRule{
			{Key: "tokyo", Keywords: []string{"東京", "渋谷"}},
			{Key: "women", Keywords: []string{"女性専用", "女性向け", "レディース"}},
			{Key: "pet", Keywords: []string{"ペット", "Pet"}},
			{Key: "market", Keywords: []string{"市場"}},
		},
		Priority:          []string{"women", "pet", "tokyo", "market"},
		DefaultCategory:   "market",
		WorldKeywords:     []string{"海外", "ニューヨーク"},
		RelevanceKeywords: []string{"シェアハウス", "賃貸", "Share House"},
	}
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>テストフィード</title>
<item>
  <title>渋谷の女性専用シェアハウスが開業 - 住宅新報</title>
  <link>https://example.com/news/1</link>
  <description><![CDATA[<p>渋谷区に<b>女性専用</b>の物件が誕生。</p>]]></description>
  <pubDate>Thu, 15 Oct 2026 09:00:00 +0900</pubDate>
  <source url="https://example.com">住宅新報</source>
</item>
<item>
  <title>ペットと暮らせるシェアハウス</title>
  <link>https://example.com/news/2</link>
  <description>郊外で増加中</description>
  <pubDate>Wed, 14 Oct 2026 09:00:00 +0900</pubDate>
</item>
<item>
  <title>ニューヨークで賃貸が高騰</title>
  <link>https://example.com/news/3</link>
  <description>海外の住宅市場</description>
</item>
</channel>
</rss>`
