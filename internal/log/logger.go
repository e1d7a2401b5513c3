/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the planner's slog logger: a compact console format for
// people, JSON for machines, and an optional rotating JSON file. Records logged
// with an edit context carry the page, day and placement they concern.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"gostickerplanner/internal/version"
)

// Options mirrors the logging section of the config file.
// FromEnv reads the same fields from GSP_LOG_LEVEL, GSP_LOG_FORMAT, GSP_LOG_SOURCE and GSP_LOG_FILE.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // console or json
	AddSource bool
	File      string // rotated JSON log, off when empty
}

// file rotation limits
const (
	fileMaxMB      = 5
	fileMaxBackups = 3
	fileMaxAgeDays = 14
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// L is the application logger. It initializes from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(FromEnv())
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// Init replaces the application logger and slog's default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, hopts)
	} else {
		console = newConsoleHandler(os.Stderr, lvl, opts.AddSource)
	}
	handlers := []slog.Handler{withEditContext(console)}
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: fileMaxMB, MaxBackups: fileMaxBackups, MaxAge: fileMaxAgeDays, Compress: true}
		handlers = append(handlers, withEditContext(slog.NewJSONHandler(w, hopts)))
	}

	h := handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	l := slog.New(h).With(slog.String("app", "gostickerplanner"), slog.String("ver", version.Version))

	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// FromEnv builds Options from GSP_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("GSP_LOG_LEVEL", "info"),
		Format:    getenv("GSP_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("GSP_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("GSP_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent names the package or subsystem doing the logging.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(keyComponent, name)) }

// WithOperation names the user-visible action being logged (png, analyze, ...).
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String(keyOp, op)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
