package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new logger based on the configuration.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	var level zerolog.Level
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	dst := cfg.Output
	if dst == nil {
		dst = os.Stdout
	}

	out := dst
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        dst,
			TimeFormat: time.RFC3339,
		}
	}

	// The file sink always receives JSON, regardless of the stdout format.
	if cfg.File != "" {
		out = zerolog.MultiLevelWriter(out, newFileWriter(cfg.File))
	}

	return zerolog.New(out).With().Timestamp().Logger()
}

func newFileWriter(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}
