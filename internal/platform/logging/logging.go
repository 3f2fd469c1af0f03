// Package logging はバイナリ共通の slog ロガーを構築します。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel は LOG_LEVEL の値を slog.Level に変換します。未知の値は info です。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は stdout に JSON で出力するロガーを返します。
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter は w に JSON で出力するロガーを返します。
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Setup は New で作ったロガーをデフォルトに設定して返します。
func Setup(level string) *slog.Logger {
	l := New(level)
	slog.SetDefault(l)
	return l
}
