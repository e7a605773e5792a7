// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package broadcaster

import (
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
)

// Config holds broadcaster options
type Config struct {
	// Name is the advertised complete local name
	Name string
	// AdvertisingInterval is the radio advertising interval
	AdvertisingInterval time.Duration
	// StrictChecksum drops full frames whose checksum does not match.
	// The voice module's checksum is not verified by default.
	StrictChecksum bool
}

// DefaultConfig returns the default broadcaster configuration
func DefaultConfig() *Config {
	return &Config{
		Name:                scoreboard.DeviceName,
		AdvertisingInterval: scoreboard.DefaultAdvertisingInterval,
	}
}
