package common

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process wide logger. storage layer code mostly emits
// at Debug level which is suppressed unless EnableDebug is set.
var Logger *zap.SugaredLogger

func init() {
	cfg := zap.NewDevelopmentConfig()
	if EnableDebug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Logger = logger.Sugar()
}
