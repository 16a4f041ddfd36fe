package infrastructure

import (
	"io"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lmittmann/tint"
)

// NewLogger returns a colored slog logger. Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
	}))
}

// RouteTelegramLogs sends the telegram library's own log lines through logger.
func RouteTelegramLogs(logger *slog.Logger) error {
	return tgbotapi.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
}
