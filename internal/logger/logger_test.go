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

package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partsdb.log")
	log := New(Config{Path: path, Level: slog.LevelInfo, MaxSizeMB: 1, MaxBackups: 1})

	log.Info("engine started", "base", "widgets")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"engine started"`)
	assert.Contains(t, string(b), `"base":"widgets"`)
}

func TestNewDropsBelowConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partsdb.log")
	log := New(Config{Path: path, Level: slog.LevelWarn})

	log.Info("should not appear")
	log.Warn("should appear")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "should not appear")
	assert.Contains(t, string(b), "should appear")
}

func TestNopDiscardsOutput(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() { log.Info("discarded") })
}

func TestDefaultConfigLogsAtInfo(t *testing.T) {
	def := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, def.Level)
	assert.Empty(t, def.Path)
}
