// Package config は環境変数から実行時設定を組み立てる。
//
// コンテンツ設定（ソース・キーワード・シード）は pipeline.LoadContent が担当し、
// ここでは NEWS_CONFIG_FILE のパスだけを扱う。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sharehouse-times/internal/store"
)

// Pipeline は更新処理（取得・公開）の設定
type Pipeline struct {
	ContentFile  string
	MaxItems     int
	FetchTimeout time.Duration
	UserAgent    string
	Archive      bool
	SnapshotKey  string
	Store        store.Config
}

// Notify は実行後の通知設定。未設定の項目があればその通知は無効。
type Notify struct {
	NotionToken      string
	NotionDatabaseID string
	EmailFrom        string
	EmailPassword    string
	EmailTo          []string
}

// NotionEnabled はNotionクリップが有効かどうかを返す
func (n Notify) NotionEnabled() bool {
	return n.NotionToken != "" && n.NotionDatabaseID != ""
}

// EmailEnabled はメール通知が有効かどうかを返す
func (n Notify) EmailEnabled() bool {
	return n.EmailFrom != "" && n.EmailPassword != "" && len(n.EmailTo) > 0
}

// API はHTTPサーバーの設定
type API struct {
	BindAddr    string
	UpdateToken string
}

// Config は全バイナリ共通の設定
type Config struct {
	Pipeline Pipeline
	Notify   Notify
	API      API
}

// Load は環境変数から設定を読み込んで検証する
//
// 数値・真偽値・期間として解釈できない値はエラーにする（デフォルトには戻さない）。
func Load() (*Config, error) {
	maxItems, errMax := getInt("NEWS_MAX_ITEMS", 50)
	timeout, errTimeout := getDuration("NEWS_FETCH_TIMEOUT", 20*time.Second)
	archive, errArchive := getBool("NEWS_ARCHIVE", false)
	if err := errors.Join(errMax, errTimeout, errArchive); err != nil {
		return nil, err
	}

	c := &Config{
		Pipeline: Pipeline{
			ContentFile:  getEnv("NEWS_CONFIG_FILE", ""),
			MaxItems:     maxItems,
			FetchTimeout: timeout,
			UserAgent:    getEnv("NEWS_USER_AGENT", ""),
			Archive:      archive,
			SnapshotKey:  getEnv("STORE_KEY", "news_data"),
			Store: store.Config{
				Backend:     strings.ToLower(getEnv("STORE_BACKEND", store.BackendDynamoDB)),
				DynamoTable: getEnv("DYNAMODB_TABLE", ""),
				AWSRegion:   getEnv("AWS_REGION", "ap-northeast-1"),
				AWSEndpoint: getEnv("AWS_ENDPOINT", ""),
				RedisURL:    getEnv("REDIS_URL", ""),
				SQLitePath:  getEnv("SQLITE_PATH", ""),
			},
		},
		Notify: Notify{
			NotionToken:      getEnv("NOTION_TOKEN", ""),
			NotionDatabaseID: getEnv("NOTION_DATABASE_ID", ""),
			EmailFrom:        getEnv("EMAIL_FROM", ""),
			EmailPassword:    getEnv("EMAIL_PASSWORD", ""),
			EmailTo:          splitAndTrim(getEnv("EMAIL_TO", "")),
		},
		API: API{
			BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
			UpdateToken: getEnv("UPDATE_TOKEN", ""),
		},
	}

	if c.Pipeline.MaxItems <= 0 {
		return nil, fmt.Errorf("NEWS_MAX_ITEMS must be positive")
	}
	if c.Pipeline.FetchTimeout <= 0 {
		return nil, fmt.Errorf("NEWS_FETCH_TIMEOUT must be positive")
	}
	if c.Pipeline.SnapshotKey == "" {
		return nil, fmt.Errorf("STORE_KEY cannot be empty")
	}
	if err := c.Pipeline.Store.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
