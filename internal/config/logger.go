package config

import (
	"github.com/phuslu/log"
)

// SetupLogger はグローバルロガーをコンソール出力で初期化する
func SetupLogger(level string) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}
}
