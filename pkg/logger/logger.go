// Package logger is the server's structured logging setup, grounded on
// cppla-moto/utils/log.go: go.uber.org/zap as the logger, lumberjack as
// the rotating file sink. Unlike the teacher (file-only JSON core), this
// also tees to a console-friendly encoder, since an interactive RakNet
// server benefits from readable stdout during development. The teacher's
// ANSI banner/section helpers are kept for startup/shutdown presentation,
// since those are operator-facing output, not log records.
package logger

import (
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide sugared logger, initialized by Init.
var L *zap.SugaredLogger

var levelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Init builds the process logger at the given level, writing to both
// stdout and a rotating file at path. It must be called once before any
// other package function.
func Init(level, path string) {
	lvl, ok := levelMap[level]
	if !ok {
		lvl = zapcore.InfoLevel
	}
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= lvl })

	hook := lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleConfig := encoderConfig
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(&hook), enabler),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(os.Stdout), enabler),
	)

	L = zap.New(core, zap.AddCaller()).Sugar()
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { L.Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { L.Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { L.Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) { L.Errorf(format, args...) }

// Fatalf logs at error level and exits the process.
func Fatalf(format string, args ...interface{}) {
	L.Errorf(format, args...)
	os.Exit(1)
}

// Banner prints the startup banner. This is operator-facing console
// output, not a log record, so it bypasses the structured core entirely.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║              %-37s║
║                    Version %-7s                      ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, title, version)
}

// Section prints a section header to stdout.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║ %-61s ║\n", title)
	fmt.Printf("╚%s╝\n\n", border)
}
