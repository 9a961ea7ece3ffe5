// Package logging builds the zap logger used by the command-line runner.
package logging

import (
	"strings"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. Format "console" gives human-readable output; anything
// else gives JSON. Unknown levels fall back to info.
func NewLogger(format, level string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

type printfLogger struct {
	sugar *zap.SugaredLogger
}

// Printf adapts a zap logger to framework.Logger. Messages are logged at info level.
func Printf(logger *zap.Logger) framework.Logger {
	if logger == nil {
		return framework.NullLogger()
	}
	return printfLogger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l printfLogger) Printf(message string, args ...interface{}) {
	l.sugar.Infof(message, args...)
}
