// Package logger は全バイナリ共通の slog ロガーを作る。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New は service 属性付きのロガーを返す
//
// LOG_FORMAT=json なら JSON（CloudWatch 向け）、それ以外は tint のカラー出力。
// レベルは LOG_LEVEL（debug / info / warn / error）。
func New(service string) *slog.Logger {
	return NewWithWriter(os.Stdout, service, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

// NewWithWriter は出力先と形式を指定してロガーを作る
func NewWithWriter(w io.Writer, service, format, level string) *slog.Logger {
	lvl := parseLevel(level)

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			AddSource:  lvl == slog.LevelDebug,
			NoColor:    w != os.Stdout && w != os.Stderr,
		})
	}
	return slog.New(h).With("service", service)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
