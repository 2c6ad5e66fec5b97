// Package logger はJSON構造化ログのセットアップを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// developmentがtrueの場合はDebugレベルまで出力する。
func Setup(w io.Writer, development bool) *slog.Logger {
	level := slog.LevelInfo
	if development {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer, development bool) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w, development)
	slog.SetDefault(logger)
}
