package main

import (
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// newLogger writes human readable logs to a terminal and JSON otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	var conf zap.Config
	if term.IsTerminal(int(os.Stderr.Fd())) {
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		conf = zap.NewProductionConfig()
	}
	conf.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		conf.Level.SetLevel(zapcore.DebugLevel)
	}
	return conf.Build()
}

func newSlogHandler(logger *zap.Logger) slog.Handler {
	return zapslog.NewHandler(logger.Core())
}
