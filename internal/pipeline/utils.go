// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// パイプライン内で共通に使う小さなヘルパー関数を提供します。
//
// 【このファイルで提供する機能】
//   - 文字列操作: 空白正規化、重複削除、rune単位の切り詰め
//   - HTML操作: タグ除去とエンティティデコード、相対URLの解決
//   - JSON操作: 標準出力・ファイルへの書き出し
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"html"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var reScriptTags = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
var reHTMLTags = regexp.MustCompile(`<[^>]*>`)

// -----------------------------------------------------------------------------
// 文字列操作関数
// -----------------------------------------------------------------------------

// normalizeWhitespace は連続する空白（改行・タブ・全角スペースを含む）を単一スペースにする
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// uniqStrings は重複と空文字列を除去する。順序は最初の出現順を保つ。
func uniqStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// truncateString は文字列を maxLen 文字（rune）以内に切り詰める
//
// maxLen を超える場合は末尾を "..." にする。結果は必ず maxLen 文字以内。
// 日本語などのマルチバイト文字も正しく処理する。
//
//	truncateString("Hello World", 8)  // "Hello..."
//	truncateString("短い", 10)        // "短い"
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// prefixRunes は先頭 n 文字（rune）を返す
func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// -----------------------------------------------------------------------------
// HTML操作関数
// -----------------------------------------------------------------------------

// cleanHTMLTags はHTMLタグを除去してエンティティをデコードする
//
// <script>/<style> ブロックは中身ごと削除する。
// フィード内で二重エスケープされた "&lt;b&gt;" のようなタグも除去できるよう、
// デコード後にもう一度タグ除去を行う。
func cleanHTMLTags(htmlStr string) string {
	text := reScriptTags.ReplaceAllString(htmlStr, "")
	text = reHTMLTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = reHTMLTags.ReplaceAllString(text, "")
	return text
}

// cleanText はタグ除去・空白正規化・トリムをまとめて行う
func cleanText(s string) string {
	return strings.TrimSpace(normalizeWhitespace(cleanHTMLTags(s)))
}

// cleanLine はタグ除去と前後のトリムだけを行う。内部の空白はそのまま残す。
func cleanLine(s string) string {
	return strings.TrimSpace(cleanHTMLTags(s))
}

// resolveURL は相対URLを絶対URLに変換する。解決できない場合は空文字列。
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// -----------------------------------------------------------------------------
// JSON操作関数
// -----------------------------------------------------------------------------

// WriteJSON は任意のデータを2スペースインデントのJSONで書き出す
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSONFile は任意のデータをJSONファイルとして保存する
func WriteJSONFile(path string, v any) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
