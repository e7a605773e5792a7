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

package observer

import (
	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/pkg/advdata"
)

// Config holds observer options
type Config struct {
	// NamePrefix is compared against the start of the advertised name
	NamePrefix string
	// RenderOnStart draws a zero scoreboard before the first advertisement
	RenderOnStart bool
}

// DefaultConfig returns the default observer configuration
func DefaultConfig() *Config {
	return &Config{
		NamePrefix:    scoreboard.DeviceName,
		RenderOnStart: true,
	}
}

// ExtractPayload walks records in order and returns the manufacturer data
// of a scoreboard advertisement. A name record must precede the
// manufacturer data; a name that does not start with prefix ends the walk.
func ExtractPayload(records []advdata.Record, prefix string) (scoreboard.Payload, bool) {
	named := false
	for _, r := range records {
		switch {
		case r.IsName():
			if len(r.Data) < len(prefix) || string(r.Data[:len(prefix)]) != prefix {
				return scoreboard.Payload{}, false
			}
			named = true
		case r.Type == advdata.TypeManufacturerData && named:
			p, err := scoreboard.ParsePayload(r.Data)
			if err != nil {
				scoreboard.Debugf("observer: %v", err)
				return scoreboard.Payload{}, false
			}
			return p, true
		}
	}
	return scoreboard.Payload{}, false
}
