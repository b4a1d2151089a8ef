package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSeedNewsRecomputesDates(t *testing.T) {
	seeds := []SeedItem{
		{ID: 2, Title: "二番目", Summary: "s", Region: RegionJapan, Source: "編集部", DaysAgo: 0, Category: "women", Categories: []string{"tokyo", "women"}, URL: "https://www.mlit.go.jp/"},
		{ID: 1, Title: "一番目", Source: "編集部", DaysAgo: 3, Category: "market", URL: "https://www.jll.com/"},
	}

	items := SeedNews(seeds, time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC))
	require.Len(t, items, 2)

	require.Equal(t, 2, items[0].ID)
	require.Equal(t, "10/15(木)", items[0].Date)
	require.Equal(t, []string{"women", "tokyo"}, items[0].Categories)
	require.Empty(t, items[0].GUID)

	require.Equal(t, 1, items[1].ID)
	require.Equal(t, "10/12(月)", items[1].Date)
	require.Equal(t, RegionJapan, items[1].Region)
	require.Equal(t, "一番目", items[1].Summary)
	require.Equal(t, []string{"market"}, items[1].Categories)

	later := SeedNews(seeds, time.Date(2026, 10, 16, 3, 0, 0, 0, time.UTC))
	require.Equal(t, "10/16(金)", later[0].Date)
	require.Equal(t, items[0].Title, later[0].Title)
}

func TestDefaultSeedsAreWellFormed(t *testing.T) {
	c, err := DefaultContent()
	require.NoError(t, err)
	require.NotEmpty(t, c.Seeds)

	for _, item := range SeedNews(c.Seeds, time.Now()) {
		require.Less(t, item.ID, FetchedIDBase)
		require.Contains(t, item.Categories, item.Category)
		require.True(t, item.Region.Valid())
		require.NotEmpty(t, item.URL)
	}
}
