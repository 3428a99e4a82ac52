// Copyright 2026 The Partsdb Authors.
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

// Package logger builds the structured logger the engine uses for its
// ambient logging: a slog.Logger backed either by stderr or, when a log
// path is configured, a rotating file via lumberjack.
package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where log output goes and how verbose it is.
type Config struct {
	// Path is the destination log file. Empty means stderr.
	Path string
	// Level is the minimum level that gets written.
	Level slog.Level
	// MaxSizeMB, MaxBackups and Compress configure lumberjack rotation;
	// they are ignored when Path is empty.
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// DefaultConfig returns the configuration used when the caller doesn't
// override anything: INFO-level logs to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      slog.LevelInfo,
		MaxSizeMB:  64,
		MaxBackups: 5,
		Compress:   true,
	}
}

// New builds a slog.Logger from cfg. The returned logger writes
// JSON-structured records; every line carries a "component" key identifying
// the subsystem (set via With in the engine constructor).
func New(cfg Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Path != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	return slog.New(h)
}

// Nop returns a logger that discards everything, for callers (tests,
// embedders) that don't want ambient logging.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
