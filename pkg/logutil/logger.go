// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"context"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/computronium/hashlist/pkg/common/moerr"
)

var _globalLogger atomic.Value
var _globalLogConfig atomic.Value

func init() {
	SetupLogger(&LogConfig{
		Level:      zapcore.InfoLevel.String(),
		Format:     "console",
		Filename:   "",
		MaxSize:    512,
		MaxDays:    0,
		MaxBackups: 0,
	})
}

// LogConfig log config
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Filename   string `toml:"filename"`
	MaxSize    int    `toml:"max-size"`
	MaxDays    int    `toml:"max-days"`
	MaxBackups int    `toml:"max-backups"`
	// StacktraceLevel is the minimum level at which a stack is attached.
	StacktraceLevel string `toml:"stacktrace-level"`
}

// ZapSink pairs an encoder with the syncer it writes to.
type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

// SetupLogger builds the global logger from conf. It panics on an
// unsupported format or a filename that names a directory.
func SetupLogger(conf *LogConfig) {
	logger := conf.build()
	replaceGlobalLogger(logger)
	_globalLogConfig.Store(*conf)
	Debugf("logger set up, level %s, format %s", conf.Level, conf.Format)
}

func (cfg *LogConfig) build() *zap.Logger {
	sinks := cfg.getSinks()
	cores := make([]zapcore.Core, 0, len(sinks))
	for _, sink := range sinks {
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, cfg.getLevel()))
	}
	return zap.New(zapcore.NewTee(cores...), cfg.getOptions()...)
}

func (cfg *LogConfig) getSyncer() zapcore.WriteSyncer {
	if cfg.Filename == "" || cfg.Filename == "console" {
		return getConsoleSyncer()
	}

	if stat, err := os.Stat(cfg.Filename); err == nil {
		if stat.IsDir() {
			panic("log file can't be a directory")
		}
	}

	if cfg.MaxSize == 0 {
		cfg.MaxSize = 512
	}
	// add lumberjack logger
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   false,
	})
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	return getLoggerEncoder(cfg.Format)
}

func (cfg *LogConfig) getLevel() zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		panic(moerr.NewInternalError(context.TODO(), "unsupported log level: %s", cfg.Level))
	}
	return level
}

func (cfg *LogConfig) getSinks() (sinks []ZapSink) {
	encoder, syncer := cfg.getEncoder(), cfg.getSyncer()
	sinks = append(sinks, ZapSink{encoder, syncer})
	return
}

func (cfg *LogConfig) getOptions() []zap.Option {
	stacktraceLevel := zap.NewAtomicLevelAt(zapcore.FatalLevel)
	if cfg.StacktraceLevel != "" {
		if err := stacktraceLevel.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil {
			panic(moerr.NewInternalError(context.TODO(), "unsupported stacktrace level: %s", cfg.StacktraceLevel))
		}
	}
	return []zap.Option{zap.AddStacktrace(stacktraceLevel), zap.AddCaller()}
}

func getLoggerEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		TimeKey:          "time",
		NameKey:          "name",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000 -0700"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}

	switch format {
	case "json", "":
		return zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	default:
		panic(moerr.NewInternalError(context.Background(), "unsupported log format: %s", format))
	}
}

func getConsoleSyncer() zapcore.WriteSyncer {
	syncer, _, err := zap.Open("stderr")
	if err != nil {
		panic(err)
	}
	return syncer
}

func replaceGlobalLogger(logger *zap.Logger) {
	_globalLogger.Store(logger)
}

func getGlobalLogConfig() LogConfig {
	return _globalLogConfig.Load().(LogConfig)
}

// GetGlobalLogger returns the current global zap Logger.
func GetGlobalLogger() *zap.Logger {
	return _globalLogger.Load().(*zap.Logger)
}
