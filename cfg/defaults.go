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

// GetDefaultConfig returns the configuration used when no config file is
// supplied, or to fill in any field a supplied file leaves unset.
func GetDefaultConfig() Config {
	return Config{
		DefaultNameLen: 32,
		Logging: LoggingConfig{
			Path:     "",
			Severity: "INFO",
			LogRotate: LogRotateConfig{
				MaxFileSizeMB:   64,
				BackupFileCount: 5,
				Compress:        true,
			},
		},
	}
}
