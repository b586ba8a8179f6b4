// Package logger points the standard logger, and gin's writers, at a
// rotating log file in addition to stderr.
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-gonic/gin"
)

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup installs file rotation when opts.File is set and returns the
// rotating writer so callers can close it on shutdown. With no file the
// standard logger is left on stderr and nil is returned.
func Setup(opts Options) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.LUTC)
	if opts.File == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, err
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, 100),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 30),
		Compress:   true,
	}

	out := io.MultiWriter(os.Stderr, rotating)
	log.SetOutput(out)
	gin.DefaultWriter = io.MultiWriter(os.Stdout, rotating)
	gin.DefaultErrorWriter = out
	return rotating, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
