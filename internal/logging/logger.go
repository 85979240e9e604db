package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 按 LOG_LEVEL 构建生产环境 zap logger，无法解析的级别回退到 info。
func New(logLevel string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// MustNew is New for process bootstrap.
func MustNew(logLevel string) *zap.Logger {
	logger, err := New(logLevel)
	if err != nil {
		panic(err)
	}
	return logger
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
