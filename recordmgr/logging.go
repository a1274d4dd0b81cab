package recordmgr

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coredb/recordmgr/rmconfig"
)

// newLogger builds a zap.Logger at the level named by cfg.LogLevel. Table
// lifecycle events (create/open/close) are logged at info and directory
// growth at debug; per-record operations are not logged at all to keep the
// hot path allocation-free.
func newLogger(cfg rmconfig.Config) *zap.Logger {
	level := zapcore.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
