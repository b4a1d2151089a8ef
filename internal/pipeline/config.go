// =============================================================================
// config.go - パイプラインのコンテンツ設定
// =============================================================================
//
// ソース一覧・キーワード表・シード記事をYAMLで管理します。
//
// 【読み込み順】
//   - path が空なら埋め込みの defaults.yaml を使う
//   - path が指定されればそのファイルを読む（defaults.yaml とはマージしない）
//
// 【設定グループ】
//   - Sources: 取得するニュースソース（設定順に取得する）
//   - Rules:   カテゴリ・地域・関連性のキーワード表
//   - Seeds:   常に表示するシード記事
//
// =============================================================================
package pipeline

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultContent []byte

// Content はパイプラインのコンテンツ設定一式
type Content struct {
	Sources []SourceConfig `yaml:"sources"`
	Rules   Rules          `yaml:"rules"`
	Seeds   []SeedItem     `yaml:"seeds"`
}

// DefaultContent は埋め込みのデフォルト設定を返す
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContent)
}

// LoadContent は path のYAMLを読み込む。path が空なら埋め込みのデフォルト。
func LoadContent(path string) (*Content, error) {
	if path == "" {
		return DefaultContent()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content config: %w", err)
	}
	c, err := ParseContent(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseContent はYAMLを解釈して検証する
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate は設定の整合性を確認する。問題はまとめて返す。
func (c *Content) Validate() error {
	var errs []error

	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("no sources configured"))
	}
	names := make(map[string]bool)
	for i, src := range c.Sources {
		label := src.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Errorf("source %s: name is required", label))
		} else if names[src.Name] {
			errs = append(errs, fmt.Errorf("source %s: duplicate name", label))
		}
		names[src.Name] = true

		if !knownKind(src.Kind) {
			errs = append(errs, fmt.Errorf("source %s: unknown kind %q", label, src.Kind))
		}
		if src.URL == "" {
			errs = append(errs, fmt.Errorf("source %s: url is required", label))
		}
		if src.Kind == KindSearch && src.Query == "" {
			errs = append(errs, fmt.Errorf("source %s: search source needs a query", label))
		}
		if src.Kind == KindHTML && (src.Selectors == nil || src.Selectors.Item == "") {
			errs = append(errs, fmt.Errorf("source %s: html source needs selectors.item", label))
		}
		if src.Region != "" && !src.Region.Valid() {
			errs = append(errs, fmt.Errorf("source %s: invalid region %q", label, src.Region))
		}
	}

	keys := make(map[string]bool)
	for _, rule := range c.Rules.Categories {
		if rule.Key == "" {
			errs = append(errs, errors.New("category rule without key"))
			continue
		}
		keys[rule.Key] = true
	}
	def := c.Rules.defaultCategory()
	keys[def] = true
	for _, key := range c.Rules.Priority {
		if !keys[key] {
			errs = append(errs, fmt.Errorf("priority: unknown category %q", key))
		}
	}
	if len(c.Rules.RelevanceKeywords) == 0 {
		errs = append(errs, errors.New("rules: relevanceKeywords is empty"))
	}

	ids := make(map[int]bool)
	for _, s := range c.Seeds {
		switch {
		case s.ID <= 0 || s.ID >= FetchedIDBase:
			errs = append(errs, fmt.Errorf("seed %d: id must be in 1..%d", s.ID, FetchedIDBase-1))
		case ids[s.ID]:
			errs = append(errs, fmt.Errorf("seed %d: duplicate id", s.ID))
		}
		ids[s.ID] = true

		if s.Title == "" {
			errs = append(errs, fmt.Errorf("seed %d: title is required", s.ID))
		}
		if s.Category == "" {
			errs = append(errs, fmt.Errorf("seed %d: category is required", s.ID))
		}
		if s.Region != "" && !s.Region.Valid() {
			errs = append(errs, fmt.Errorf("seed %d: invalid region %q", s.ID, s.Region))
		}
		if s.DaysAgo < 0 {
			errs = append(errs, fmt.Errorf("seed %d: daysAgo must not be negative", s.ID))
		}
	}

	return errors.Join(errs...)
}
