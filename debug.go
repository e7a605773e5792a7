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

package scoreboard

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// debugEnabled controls whether debug output reaches the console
var debugEnabled atomic.Bool

var consoleLog = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: "15:04:05.000",
}).With().Timestamp().Logger()

func init() {
	if os.Getenv("SCOREBOARD_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled.Store(true)
	}
}

// Debugf logs debug information.
// Always writes to the session log (if initialized).
// Only prints to the console when debug mode is enabled.
func Debugf(format string, args ...any) {
	debugMessage(fmt.Sprintf(format, args...))
}

// Debugln logs debug information, formatting args like fmt.Sprint.
func Debugln(args ...any) {
	debugMessage(fmt.Sprint(args...))
}

func debugMessage(message string) {
	if l := sessionLogger(); l != nil {
		l.Debug().Time("at", time.Now()).Msg(message)
	}
	if debugEnabled.Load() {
		consoleLog.Debug().Msg(message)
	}
}

// SetDebugEnabled allows programmatic control of debug logging
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether console debug output is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}
