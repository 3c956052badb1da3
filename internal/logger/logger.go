package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New создаёт логгер с уровнем level. Пустой writer означает консоль.
func New(level string, w io.Writer) zerolog.Logger {
	zerolog.DurationFieldInteger = true

	if w == nil {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel разбирает уровень логирования, по умолчанию info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Component возвращает дочерний логгер с полем component.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop логгер для тестов.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
