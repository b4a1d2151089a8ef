package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRelevant(t *testing.T) {
	r := testRules()

	require.True(t, r.IsRelevant(RawItem{Title: "全く関係ない見出し", Description: "駅近のシェアハウスを紹介"}))
	require.True(t, r.IsRelevant(RawItem{Title: "賃貸の更新料", Description: ""}))
	require.True(t, r.IsRelevant(RawItem{Title: "Tokyo SHARE HOUSE boom"}))
	require.False(t, r.IsRelevant(RawItem{Title: "株価が上昇", Description: "日経平均"}))
	require.False(t, (&Rules{}).IsRelevant(RawItem{Title: "シェアハウス"}))
}

func TestCategorizeDefault(t *testing.T) {
	got := testRules().Categorize("今日の天気", "晴れのち曇り")
	require.Equal(t, Classification{Category: "market", Categories: []string{"market"}}, got)

	got = (&Rules{}).Categorize("何もない", "")
	require.Equal(t, "market", got.Category)
	require.Equal(t, []string{"market"}, got.Categories)
}

func TestCategorizeMultiTag(t *testing.T) {
	got := testRules().Categorize("渋谷の女性専用シェアハウス", "")
	require.ElementsMatch(t, []string{"tokyo", "women"}, got.Categories)
	require.Equal(t, "women", got.Category)
}

func TestCategorizeFirstMatchWithoutPriority(t *testing.T) {
	r := testRules()
	r.Priority = nil

	got := r.Categorize("渋谷の女性専用シェアハウス", "")
	require.Equal(t, "tokyo", got.Category)
	require.Equal(t, []string{"tokyo", "women"}, got.Categories)
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	got := testRules().Categorize("PET friendly", "")
	require.Equal(t, "pet", got.Category)
}

func TestCategorizeIsDeterministic(t *testing.T) {
	r := testRules()
	first := r.Categorize("東京のペット可レディース物件", "市場動向")
	for i := 0; i < 20; i++ {
		require.Equal(t, first, r.Categorize("東京のペット可レディース物件", "市場動向"))
	}
	require.Equal(t, "women", first.Category)
	require.Equal(t, []string{"tokyo", "women", "pet", "market"}, first.Categories)
}

func TestRegion(t *testing.T) {
	r := testRules()
	require.Equal(t, RegionWorld, r.Region("ニューヨークのコリビング", ""))
	require.Equal(t, RegionWorld, r.Region("", "海外の事例"))
	require.Equal(t, RegionJapan, r.Region("渋谷のシェアハウス", "国内"))
}

func TestDefaultRulesProperties(t *testing.T) {
	c, err := DefaultContent()
	require.NoError(t, err)
	r := &c.Rules

	require.True(t, r.IsRelevant(RawItem{Title: "無関係なタイトル", Description: "シェアハウス"}))

	got := r.Categorize("渋谷の女性専用シェアハウス", "")
	require.Contains(t, got.Categories, "tokyo")
	require.Contains(t, got.Categories, "women")
	require.Equal(t, "women", got.Category)

	require.Equal(t, Classification{Category: "market", Categories: []string{"market"}}, r.Categorize("今日の天気", "晴れ"))
}
