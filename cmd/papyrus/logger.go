package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the logger handed to the library components.
//
// The server logs JSON at info level. Other commands print only warnings,
// in console format, so that logs do not drown their output. verbose lowers
// both to debug.
func newLogger(w io.Writer, server, verbose bool) *zap.Logger {
	var (
		encoder zapcore.Encoder
		level   zapcore.Level
	)

	if server && !verbose {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		level = zapcore.InfoLevel
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
		level = zapcore.WarnLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller())
}
