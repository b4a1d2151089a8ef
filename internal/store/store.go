// Package store はスナップショットを保存するキーバリューストアの実装をまとめる。
//
// どのバックエンドも1キー単位の上書き（最後の書き込みが勝つ）だけを提供する。
// 複数キーにまたがる原子性はない。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound はキーが存在しないときに返る
var ErrNotFound = errors.New("store: key not found")

// KV はパイプラインが必要とする最小限のキーバリュー操作
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// バックエンド名
const (
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config はバックエンドの選択と接続情報
type Config struct {
	Backend string

	// dynamodb
	DynamoTable string
	AWSRegion   string
	AWSEndpoint string

	// redis
	RedisURL string

	// sqlite
	SQLitePath string
}

// Validate は選択したバックエンドに必要な設定が揃っているかを確認する
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendDynamoDB:
		if c.DynamoTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the %s backend", BackendDynamoDB)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s backend", BackendRedis)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s backend", BackendSQLite)
		}
	case BackendMemory:
	case "":
		return errors.New("STORE_BACKEND is required")
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}
	return nil
}

// Open は設定に応じたバックエンドを開く。設定不足なら即座にエラーを返す。
func Open(ctx context.Context, cfg Config) (KV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Backend) {
	case BackendDynamoDB:
		return NewDynamoDB(ctx, cfg.DynamoTable, cfg.AWSRegion, cfg.AWSEndpoint)
	case BackendRedis:
		return NewRedis(ctx, cfg.RedisURL)
	case BackendSQLite:
		return NewSQLite(ctx, cfg.SQLitePath)
	default:
		return NewMemory(), nil
	}
}
