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
	"path/filepath"
	"regexp"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/computronium/hashlist/pkg/common/moerr"
)

func TestLogConfig_getter(t *testing.T) {
	type fields struct {
		Level      string
		Format     string
		Filename   string
		MaxSize    int
		MaxDays    int
		MaxBackups int

		Entry zapcore.Entry
	}
	tests := []struct {
		name        string
		fields      fields
		wantLevel   zap.AtomicLevel
		wantOpts    []zap.Option
		wantSyncer  zapcore.WriteSyncer
		wantEncoder zapcore.Encoder
		wantSinks   []ZapSink
	}{
		{
			name: "normal",
			fields: fields{
				Level:      "debug",
				Format:     "console",
				Filename:   "",
				MaxSize:    0,
				MaxDays:    0,
				MaxBackups: 0,

				Entry: zapcore.Entry{Level: zapcore.DebugLevel, Message: "console msg"},
			},
			wantLevel:   zap.NewAtomicLevelAt(zap.DebugLevel),
			wantOpts:    []zap.Option{zap.AddStacktrace(zapcore.FatalLevel), zap.AddCaller()},
			wantSyncer:  getConsoleSyncer(),
			wantEncoder: getLoggerEncoder("console"),
			wantSinks:   []ZapSink{{getLoggerEncoder("console"), getConsoleSyncer()}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &LogConfig{
				Level:      tt.fields.Level,
				Format:     tt.fields.Format,
				Filename:   tt.fields.Filename,
				MaxSize:    tt.fields.MaxSize,
				MaxDays:    tt.fields.MaxDays,
				MaxBackups: tt.fields.MaxBackups,
			}
			require.Equal(t, tt.wantLevel, cfg.getLevel())
			require.Equal(t, len(tt.wantOpts), len(cfg.getOptions()))
			require.Equal(t, tt.wantSyncer, cfg.getSyncer())
			wantMsg, _ := tt.wantEncoder.EncodeEntry(tt.fields.Entry, nil)
			gotMsg, _ := cfg.getEncoder().EncodeEntry(tt.fields.Entry, nil)
			require.Equal(t, wantMsg.String(), gotMsg.String())
			require.Equal(t, len(tt.wantSinks), len(cfg.getSinks()))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	defer leaktest.AfterTest(t)()
	type args struct {
		conf *LogConfig
	}
	tests := []struct {
		name string
		args args
	}{
		{
			name: "console",
			args: args{conf: &LogConfig{
				Level:      zapcore.DebugLevel.String(),
				Format:     "console",
				Filename:   "",
				MaxSize:    512,
				MaxDays:    0,
				MaxBackups: 0,

				StacktraceLevel: "panic",
			}},
		},
		{
			name: "json",
			args: args{conf: &LogConfig{
				Level:      zapcore.DebugLevel.String(),
				Format:     "json",
				Filename:   "",
				MaxSize:    512,
				MaxDays:    0,
				MaxBackups: 0,

				StacktraceLevel: "error",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.args.conf)
			require.Equal(t, tt.args.conf.Format, getGlobalLogConfig().Format)
			Info("hello", zap.Int("int", 0))
			Debugf("hello %d", 1)
		})
	}
}

func TestSetupLogger_panic(t *testing.T) {
	defer leaktest.AfterTest(t)()
	type args struct {
		conf *LogConfig
	}
	tests := []struct {
		name string
		args args
	}{
		{
			name: "panic",
			args: args{conf: &LogConfig{
				Level:      zapcore.DebugLevel.String(),
				Format:     "panic",
				Filename:   "",
				MaxSize:    512,
				MaxDays:    0,
				MaxBackups: 0,
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if err := recover(); err != nil {
					require.Equal(t, moerr.NewInternalError(context.TODO(), "unsupported log format: %s", tt.args.conf.Format), err)
				} else {
					t.Errorf("not receive panic")
				}
			}()
			SetupLogger(tt.args.conf)
		})
	}
}

func Test_getLoggerEncoder(t *testing.T) {
	defer leaktest.AfterTest(t)()
	type args struct {
		format string
	}
	type fields struct {
		entry  zapcore.Entry
		fields []zap.Field
	}
	tests := []struct {
		name       string
		args       args
		fields     fields
		wantOutput *regexp.Regexp
		foundCnt   int
	}{
		{
			name: "console",
			args: args{
				format: "console",
			},
			fields: fields{
				entry:  zapcore.Entry{Level: zapcore.DebugLevel, Message: "console msg"},
				fields: []zap.Field{},
			},
			// like: 0001/01/01 00:00:00.000000 +0000 DEBUG console msg
			wantOutput: regexp.MustCompile(`\d{4}/\d{2}/\d{2} (\d{2}:{0,1}){3}\.\d{6} \+\d{4} DEBUG console msg`),
			foundCnt:   1,
		},
		{
			name: "json",
			args: args{
				format: "json",
			},
			fields: fields{
				entry:  zapcore.Entry{Level: zapcore.DebugLevel, Message: "json msg"},
				fields: []zap.Field{},
			},
			wantOutput: regexp.MustCompile(`\{.*"level":"DEBUG".*"msg":"json msg".*\}`),
			foundCnt:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getLoggerEncoder(tt.args.format)
			require.NotNil(t, got)
			buf, err := got.EncodeEntry(tt.fields.entry, tt.fields.fields)
			require.Nil(t, err)
			t.Logf("encode result: %s", buf.String())
			found := tt.wantOutput.FindAll(buf.Bytes(), -1)
			require.Equal(t, tt.foundCnt, len(found))
		})
	}
}

func TestSetupLogger_panicDir(t *testing.T) {
	conf := &LogConfig{
		Level:    zapcore.DebugLevel.String(),
		Format:   "json",
		Filename: t.TempDir(),
		MaxSize:  512,
	}
	defer func() {
		if err := recover(); err != nil {
			require.Equal(t, "log file can't be a directory", err)
		} else {
			t.Errorf("not receive panic")
		}
	}()
	SetupLogger(conf)
}

func TestStacktraceLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		withStack []zapcore.Level
		noStack   []zapcore.Level
	}{
		{
			name:    "default is fatal",
			level:   "",
			noStack: []zapcore.Level{zapcore.WarnLevel, zapcore.ErrorLevel},
		},
		{
			name:      "error",
			level:     "error",
			withStack: []zapcore.Level{zapcore.ErrorLevel},
			noStack:   []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel},
		},
		{
			name:      "warn",
			level:     "warn",
			withStack: []zapcore.Level{zapcore.WarnLevel, zapcore.ErrorLevel},
			noStack:   []zapcore.Level{zapcore.DebugLevel},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &LogConfig{Level: "debug", Format: "console", StacktraceLevel: tt.level}
			core, logs := observer.New(zapcore.DebugLevel)
			logger := zap.New(core, cfg.getOptions()...)
			for _, lvl := range tt.withStack {
				logger.Check(lvl, "stack").Write()
			}
			for _, lvl := range tt.noStack {
				logger.Check(lvl, "plain").Write()
			}
			for _, e := range logs.FilterMessage("stack").All() {
				require.NotEmpty(t, e.Stack, e.Level.String())
			}
			for _, e := range logs.FilterMessage("plain").All() {
				require.Empty(t, e.Stack, e.Level.String())
			}
			require.Equal(t, len(tt.withStack)+len(tt.noStack), logs.Len())
		})
	}

	cfg := &LogConfig{StacktraceLevel: "loud"}
	require.PanicsWithValue(t,
		moerr.NewInternalError(context.TODO(), "unsupported stacktrace level: %s", "loud"),
		func() { cfg.getOptions() })
}

func TestUnsupportedLevel(t *testing.T) {
	cfg := &LogConfig{Level: "verbose", Format: "json"}
	require.PanicsWithValue(t,
		moerr.NewInternalError(context.TODO(), "unsupported log level: %s", "verbose"),
		func() { cfg.getLevel() })
}

func TestFileSinkMaxSizeDefault(t *testing.T) {
	defer SetupLogger(&LogConfig{Level: "info", Format: "console", MaxSize: 512})

	path := filepath.Join(t.TempDir(), "hashlist.log")
	conf := &LogConfig{
		Level:      "info",
		Format:     "json",
		Filename:   path,
		MaxDays:    3,
		MaxBackups: 2,
	}
	SetupLogger(conf)
	require.Equal(t, 512, conf.MaxSize)
	require.Equal(t, 512, getGlobalLogConfig().MaxSize)
	require.Equal(t, path, getGlobalLogConfig().Filename)

	Info("written to file", zap.String("sink", "lumberjack"))
	Debug("below level")
	require.NoError(t, GetGlobalLogger().Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Regexp(t, `"level":"INFO".*"msg":"written to file".*"sink":"lumberjack"`, string(data))
	require.NotContains(t, string(data), "below level")

	conf = &LogConfig{Level: "info", Format: "json", Filename: path, MaxSize: 64}
	conf.getSyncer()
	require.Equal(t, 64, conf.MaxSize)
}
