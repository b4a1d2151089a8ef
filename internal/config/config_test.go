package config_test

import (
	"testing"
	"time"

	"sharehouse-times/internal/config"
	"sharehouse-times/internal/store"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NEWS_CONFIG_FILE", "NEWS_MAX_ITEMS", "NEWS_FETCH_TIMEOUT", "NEWS_USER_AGENT",
		"NEWS_ARCHIVE", "STORE_BACKEND", "STORE_KEY", "DYNAMODB_TABLE", "AWS_REGION",
		"AWS_ENDPOINT", "REDIS_URL", "SQLITE_PATH", "NOTION_TOKEN", "NOTION_DATABASE_ID",
		"EMAIL_FROM", "EMAIL_PASSWORD", "EMAIL_TO", "API_BIND_ADDR", "UPDATE_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DYNAMODB_TABLE", "sharehouse-kv")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 50, cfg.Pipeline.MaxItems)
	require.Equal(t, 20*time.Second, cfg.Pipeline.FetchTimeout)
	require.Equal(t, "news_data", cfg.Pipeline.SnapshotKey)
	require.False(t, cfg.Pipeline.Archive)
	require.Equal(t, store.BackendDynamoDB, cfg.Pipeline.Store.Backend)
	require.Equal(t, "ap-northeast-1", cfg.Pipeline.Store.AWSRegion)
	require.Equal(t, "0.0.0.0:8080", cfg.API.BindAddr)
	require.False(t, cfg.Notify.NotionEnabled())
	require.False(t, cfg.Notify.EmailEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/news.db")
	t.Setenv("NEWS_MAX_ITEMS", "10")
	t.Setenv("NEWS_FETCH_TIMEOUT", "5s")
	t.Setenv("NEWS_ARCHIVE", "true")
	t.Setenv("STORE_KEY", "news_data_staging")
	t.Setenv("EMAIL_FROM", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("EMAIL_TO", "editor@example.com, ops@example.com")
	t.Setenv("UPDATE_TOKEN", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, store.BackendSQLite, cfg.Pipeline.Store.Backend)
	require.Equal(t, "/tmp/news.db", cfg.Pipeline.Store.SQLitePath)
	require.Equal(t, 10, cfg.Pipeline.MaxItems)
	require.Equal(t, 5*time.Second, cfg.Pipeline.FetchTimeout)
	require.True(t, cfg.Pipeline.Archive)
	require.Equal(t, "news_data_staging", cfg.Pipeline.SnapshotKey)
	require.Equal(t, []string{"editor@example.com", "ops@example.com"}, cfg.Notify.EmailTo)
	require.True(t, cfg.Notify.EmailEnabled())
	require.Equal(t, "secret", cfg.API.UpdateToken)
}

func TestLoadFailsFastOnMissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()
	require.ErrorContains(t, err, "DYNAMODB_TABLE")

	t.Setenv("STORE_BACKEND", "redis")
	_, err = config.Load()
	require.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("NEWS_MAX_ITEMS", "0")

	_, err := config.Load()
	require.ErrorContains(t, err, "NEWS_MAX_ITEMS")

	t.Setenv("NEWS_MAX_ITEMS", "")
	t.Setenv("STORE_BACKEND", "etcd")
	_, err = config.Load()
	require.ErrorContains(t, err, "unknown STORE_BACKEND")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"max items not a number", "NEWS_MAX_ITEMS", "abc"},
		{"archive not a boolean", "NEWS_ARCHIVE", "sometimes"},
		{"timeout without unit", "NEWS_FETCH_TIMEOUT", "20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("STORE_BACKEND", "memory")
			t.Setenv(tt.key, tt.val)

			cfg, err := config.Load()
			require.Nil(t, cfg)
			require.ErrorContains(t, err, tt.key)
			require.ErrorContains(t, err, tt.val)
		})
	}
}
