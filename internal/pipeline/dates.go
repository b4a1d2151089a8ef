package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// jst は表示用日付のタイムゾーン。Lambda には tzdata が無いので固定オフセットで持つ。
var jst = time.FixedZone("JST", 9*60*60)

var weekdayJA = [...]string{"日", "月", "火", "水", "木", "金", "土"}

var reJapaneseDateYMD = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

// pubDateLayouts はフィードで見かける日付形式（上から順に試す）
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
}

// FormatDisplayDate は "M/D(曜)" 形式の表示用日付を返す（JST）
//
//	FormatDisplayDate(2026-10-15T03:00:00Z) // "10/15(木)"
func FormatDisplayDate(t time.Time) string {
	t = t.In(jst)
	return fmt.Sprintf("%d/%d(%s)", int(t.Month()), t.Day(), weekdayJA[t.Weekday()])
}

// parsePubDate はフィードの日付文字列をベストエフォートで解釈する
func parsePubDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if m := reJapaneseDateYMD.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, jst), true
		}
	}
	return time.Time{}, false
}

// resolvePublished は日付が読めなければ now を返す
func resolvePublished(s string, now time.Time) time.Time {
	if t, ok := parsePubDate(s); ok {
		return t
	}
	return now
}
