// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger wraps log/slog with the severities the original kernel's
// trace!/debug!/info!/warn!/error! call sites use, and rotates its output
// through lumberjack the way a long-running kernel simulation needs to.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/medihbt/rcore-gokernel/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity extends slog's levels with the TRACE level the original Rust
// source uses liberally (trace! is below slog's Debug).
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

var defaultLoggerFactory = &loggerFactory{}

var defaultLogger = slog.New(defaultLoggerFactory.createTextHandler(os.Stderr, severityToLevel("INFO")))

type loggerFactory struct{}

func (loggerFactory) createTextHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceLevelAttr(a)
		},
	})
}

func (loggerFactory) createJSONHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceLevelAttr(a)
		},
	})
}

func replaceLevelAttr(a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level := a.Value.Any().(slog.Level)
	if name, ok := levelNames[level]; ok {
		a.Value = slog.StringValue(name)
	}
	a.Key = "severity"
	return a
}

func severityToLevel(severity string) slog.Level {
	switch severity {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return slog.LevelError + 100
	default:
		return LevelInfo
	}
}

// Init (re)configures the process-wide default logger from cfg.
func Init(cfg config.LoggingConfig) {
	var w io.Writer = os.Stderr
	if cfg.LogRotate.Path != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.LogRotate.Path,
			MaxSize:    cfg.LogRotate.MaxFileSizeMB,
			MaxBackups: cfg.LogRotate.BackupFileCount,
			Compress:   cfg.LogRotate.Compress,
		}
	}
	level := severityToLevel(cfg.Severity)
	var h slog.Handler
	if cfg.Format == "json" {
		h = defaultLoggerFactory.createJSONHandler(w, level)
	} else {
		h = defaultLoggerFactory.createTextHandler(w, level)
	}
	defaultLogger = slog.New(h)
}

// With returns a logger decorated with the given attributes, e.g.
// logger.With("pid", pid, "tid", tid) to match the trace!("pid[{}] tid[{}]")
// call sites in the original kernel.
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

func Tracef(format string, args ...any)                     { logf(LevelTrace, format, args...) }
func Debugf(format string, args ...any)                     { logf(LevelDebug, format, args...) }
func Infof(format string, args ...any)                      { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...any)                      { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...any)                     { logf(LevelError, format, args...) }
func logf(level slog.Level, format string, args ...any) {
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}
