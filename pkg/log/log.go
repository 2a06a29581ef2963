// Copyright 2026 The go-sdc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log wraps go.uber.org/zap with a small, context-carried Logger
// interface. The module's long-running loops defer HandlePanic so a panic
// in them is logged before it propagates.
package log

import (
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface used throughout go-sdc.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	// With returns a derived logger with additional fields attached to
	// every subsequent entry.
	With(fields ...zap.Field) Logger
}

type logger struct {
	z *zap.Logger
}

func (l *logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *logger) With(fields ...zap.Field) Logger {
	return &logger{z: l.z.With(fields...)}
}

var root atomic.Pointer[logger]
var rootOnce sync.Once

func init() {
	rootOnce.Do(func() {
		root.Store(&logger{z: zap.NewNop()})
	})
}

// Config is the TOML-encodable logging configuration, mirroring the
// logging sub-block referenced from every service's top-level Config.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `toml:"level,omitempty"`
	// Format is one of console, json. Empty means console.
	Format string `toml:"format,omitempty"`
	// FilePath, if set, writes logs to a file instead of stderr.
	FilePath string `toml:"file_path,omitempty"`
}

// InitDefaults fills in the config's zero values.
func (c *Config) InitDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
}

// Validate checks the configured level/format are recognized.
func (c *Config) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return zapLevelError(c.Level)
	}
	switch c.Format {
	case "console", "json":
	default:
		return zapFormatError(c.Format)
	}
	return nil
}

type zapLevelError string

func (e zapLevelError) Error() string { return "unknown log level: " + string(e) }

type zapFormatError string

func (e zapFormatError) Error() string { return "unknown log format: " + string(e) }

// Setup builds the process-wide root logger from cfg. It must be called at
// most once, before any component logs; components never construct a zap
// logger directly.
func Setup(cfg Config) error {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return err
	}
	var enc zapcore.Encoder
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	out := zapcore.Lock(os.Stderr)
	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = zapcore.Lock(f)
	}
	core := zapcore.NewCore(enc, out, level)
	root.Store(&logger{z: zap.New(core, zap.AddCaller())})
	return nil
}

// Root returns the process-wide root logger. Never nil.
func Root() Logger {
	return root.Load()
}

// HandlePanic recovers a panic in the current goroutine, logs it at Error
// level with a stack trace, and re-panics. It is deferred in the launcher's
// execute, the periodic runner loop, the report sender loops, the consumer's
// apply loop and both binaries' discovery listen loops, so a crash there is
// never silent.
func HandlePanic() {
	if r := recover(); r != nil {
		Root().Error("panic",
			zap.Any("recovered", r),
			zap.ByteString("stack", debug.Stack()),
		)
		panic(r)
	}
}
