package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatDisplayDate(t *testing.T) {
	require.Equal(t, "10/15(木)", FormatDisplayDate(time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC)))
	// UTC 16時は JST では翌日
	require.Equal(t, "10/16(金)", FormatDisplayDate(time.Date(2026, 10, 15, 16, 0, 0, 0, time.UTC)))
	require.Equal(t, "1/4(日)", FormatDisplayDate(time.Date(2026, 1, 4, 12, 0, 0, 0, jst)))
}

func TestParsePubDate(t *testing.T) {
	cases := map[string]time.Time{
		"Thu, 15 Oct 2026 09:00:00 +0900": time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		"Thu, 15 Oct 2026 00:00:00 GMT":   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		"Thu, 1 Oct 2026 00:00:00 +0000":  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		"2026-10-14T10:00:00+09:00":       time.Date(2026, 10, 14, 1, 0, 0, 0, time.UTC),
		"2026-10-14":                      time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		"2026年10月1日 配信":                  time.Date(2026, 10, 1, 0, 0, 0, 0, jst),
	}
	for in, want := range cases {
		got, ok := parsePubDate(in)
		require.True(t, ok, in)
		require.True(t, want.Equal(got), "%s: got %v want %v", in, got, want)
	}

	_, ok := parsePubDate("")
	require.False(t, ok)
	_, ok = parsePubDate("昨日")
	require.False(t, ok)
	_, ok = parsePubDate("2026年13月1日")
	require.False(t, ok)
}

func TestResolvePublishedFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, now, resolvePublished("not a date", now))
	require.True(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC).Equal(resolvePublished("2026-10-14", now)))
}
