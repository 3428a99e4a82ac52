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

// Package cfg loads engine-wide configuration: the default name_len used by
// Create, and the destination and rotation policy for the structured log.
package cfg

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level, viper-decoded configuration for a partsdb
// instance.
type Config struct {
	// DefaultNameLen is the name_len passed to store.Create when a caller
	// doesn't specify one explicitly.
	DefaultNameLen int `mapstructure:"default-name-len"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls the destination and rotation policy of the
// structured log. An empty Path logs to stderr.
type LoggingConfig struct {
	Path     string `mapstructure:"path"`
	Severity string `mapstructure:"severity"`

	LogRotate LogRotateConfig `mapstructure:"log-rotate"`
}

// LogRotateConfig mirrors the on-disk rotation knobs of the lumberjack
// writer backing the logger.
type LogRotateConfig struct {
	MaxFileSizeMB   int  `mapstructure:"max-file-size-mb"`
	BackupFileCount int  `mapstructure:"backup-file-count"`
	Compress        bool `mapstructure:"compress"`
}

// Load reads configuration from path (if non-empty) layered over
// GetDefaultConfig, using viper. The file is parsed as YAML whatever its
// extension (so JSON, being valid YAML, also loads; TOML does not). It
// validates the result before returning it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	def := GetDefaultConfig()
	v.SetDefault("default-name-len", def.DefaultNameLen)
	v.SetDefault("logging.path", def.Logging.Path)
	v.SetDefault("logging.severity", def.Logging.Severity)
	v.SetDefault("logging.log-rotate.max-file-size-mb", def.Logging.LogRotate.MaxFileSizeMB)
	v.SetDefault("logging.log-rotate.backup-file-count", def.Logging.LogRotate.BackupFileCount)
	v.SetDefault("logging.log-rotate.compress", def.Logging.LogRotate.Compress)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	c.Logging.Severity = strings.ToUpper(c.Logging.Severity)

	if err := ValidateConfig(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
