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

import "fmt"

const (
	DefaultNameLenTooSmallError = "default-name-len must be at least 4"
	UnknownSeverityError        = "logging.severity must be one of DEBUG, INFO, WARN, ERROR"
)

func isValidLogRotateConfig(c *LogRotateConfig) error {
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if c.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidSeverity(s string) bool {
	switch s {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return true
	default:
		return false
	}
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(c *Config) error {
	if c.DefaultNameLen < 4 {
		return fmt.Errorf(DefaultNameLenTooSmallError)
	}
	if !isValidSeverity(c.Logging.Severity) {
		return fmt.Errorf(UnknownSeverityError)
	}
	if err := isValidLogRotateConfig(&c.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}
	return nil
}
