package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"chrononews-attachments/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger. With LOG_FILE set, output also goes to a
// rotated file. The returned closer releases that file.
func New(cfg *config.Config) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	writer := io.Writer(os.Stdout)

	if cfg.LogFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stdout, fileWriter)
		closer = fileWriter
	}

	return newLogger(writer, cfg.LogLevel), closer
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
