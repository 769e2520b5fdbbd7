package logging

import (
	"io"
	"log"
	"os"

	"meeting-portal-backend/pkg/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger at stderr, plus a rotating file when LOG_FILE is set.
// The returned closer flushes the file; it is a no-op otherwise.
func Setup(cfg *config.Config) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cfg.LogFile == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	log.Printf("[Logging] Writing logs to %s", cfg.LogFile)
	return file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
