package pipeline

import "time"

// SeedItem は編集部が手で用意した「常に表示する」記事
//
// 内容とIDは固定。日付だけは公開時点から DaysAgo 日前として毎回計算し直す。
type SeedItem struct {
	ID         int      `yaml:"id"`
	Title      string   `yaml:"title"`
	Summary    string   `yaml:"summary"`
	Region     Region   `yaml:"region"`
	Source     string   `yaml:"source"`
	DaysAgo    int      `yaml:"daysAgo"`
	Category   string   `yaml:"category"`
	Categories []string `yaml:"categories,omitempty"`
	URL        string   `yaml:"url"`
}

// NewsItem は now 時点のシード記事を返す
func (s SeedItem) NewsItem(now time.Time) NewsItem {
	categories := uniqStrings(append([]string{s.Category}, s.Categories...))
	summary := s.Summary
	if summary == "" {
		summary = s.Title
	}
	region := s.Region
	if region == "" {
		region = RegionJapan
	}
	return NewsItem{
		ID:         s.ID,
		Title:      s.Title,
		Summary:    summary,
		Region:     region,
		Source:     s.Source,
		Date:       FormatDisplayDate(now.AddDate(0, 0, -s.DaysAgo)),
		Category:   s.Category,
		Categories: categories,
		URL:        s.URL,
	}
}

// SeedNews は宣言順のままシード記事を NewsItem に変換する
func SeedNews(seeds []SeedItem, now time.Time) []NewsItem {
	out := make([]NewsItem, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, s.NewsItem(now))
	}
	return out
}
