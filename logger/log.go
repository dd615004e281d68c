package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	sugar  *zap.SugaredLogger
	once   sync.Once
	encode = "console"
)

// SetLevel changes the minimum level that is written. An empty or unknown
// level falls back to debug.
func SetLevel(lvl string) {
	l, err := zapcore.ParseLevel(lvl)
	if lvl == "" || err != nil {
		l = zap.DebugLevel
	}
	level.SetLevel(l)
	Debugf("Set logger level to %v", level)
}

// SetEncoding switches between "console" and "json" output. It only has an
// effect before the first log line is written.
func SetEncoding(enc string) {
	if enc == "json" || enc == "console" {
		encode = enc
	}
}

func InitLogger(force bool) {
	if force {
		build()
		return
	}
	once.Do(build)
}

func build() {
	cfg := zap.Config{
		Level:            level,
		Encoding:         encode,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	sugar = l.Sugar()
}

// L returns the shared sugared logger.
func L() *zap.SugaredLogger {
	InitLogger(false)
	return sugar
}

// With returns a child logger carrying the given key/value pairs.
func With(args ...interface{}) *zap.SugaredLogger {
	return L().With(args...)
}

func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func Debug(args ...interface{}) {
	L().Debug(args...)
}

func Info(args ...interface{}) {
	L().Info(args...)
}

func Warn(args ...interface{}) {
	L().Warn(args...)
}

func Error(args ...interface{}) {
	L().Error(args...)
}

func Debugf(template string, args ...interface{}) {
	L().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	L().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	L().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	L().Errorf(template, args...)
}
