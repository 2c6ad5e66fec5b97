// Package main は求人応募トラッカーAPIサーバーのエントリーポイント。
// サブコマンド（serve/migrate/healthcheck）の解釈と起動はinternal/appが行う。
package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/jobtrack/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
