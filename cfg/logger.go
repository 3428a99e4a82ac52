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

package cfg

import (
	"log/slog"

	"github.com/nyxlabs/partsdb/internal/logger"
)

// NewLogger builds the slog.Logger described by c.Logging.
func (c Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch c.Logging.Severity {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return logger.New(logger.Config{
		Path:       c.Logging.Path,
		Level:      level,
		MaxSizeMB:  c.Logging.LogRotate.MaxFileSizeMB,
		MaxBackups: c.Logging.LogRotate.BackupFileCount,
		Compress:   c.Logging.LogRotate.Compress,
	})
}
