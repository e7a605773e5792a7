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
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Session log rotation limits.
const (
	sessionLogMaxSizeMB  = 10
	sessionLogMaxBackups = 5
	sessionLogMaxAgeDays = 14
)

type sessionLog struct {
	writer *lumberjack.Logger
	logger zerolog.Logger
}

var currentSession atomic.Pointer[sessionLog]

func sessionLogger() *zerolog.Logger {
	if s := currentSession.Load(); s != nil {
		return &s.logger
	}
	return nil
}

// InitSessionLog opens a rotating JSON session log named after prefix in
// dir. Returns the log file path for display to the user.
func InitSessionLog(dir, prefix string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create session log directory: %w", err)
	}

	filename := filepath.Join(dir, prefix+".log")
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    sessionLogMaxSizeMB,
		MaxBackups: sessionLogMaxBackups,
		MaxAge:     sessionLogMaxAgeDays,
	}
	s := &sessionLog{
		writer: writer,
		logger: zerolog.New(writer).With().Str("session", time.Now().Format("20060102_150405")).Logger(),
	}
	writeSessionHeader(&s.logger)

	if old := currentSession.Swap(s); old != nil {
		_ = old.writer.Close()
	}
	return filename, nil
}

// CloseSessionLog closes the current session log.
func CloseSessionLog() error {
	s := currentSession.Swap(nil)
	if s == nil {
		return nil
	}
	s.logger.Info().Msg("session ended")
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to close session log: %w", err)
	}
	return nil
}

// GetSessionLogPath returns the current session log file path.
func GetSessionLogPath() string {
	if s := currentSession.Load(); s != nil {
		return s.writer.Filename
	}
	return ""
}

// writeSessionHeader records metadata about the process.
func writeSessionHeader(l *zerolog.Logger) {
	event := l.Info().
		Int("pid", os.Getpid()).
		Str("os", runtime.GOOS+"/"+runtime.GOARCH).
		Str("go", runtime.Version()).
		Str("args", strings.Join(os.Args, " "))
	if exe, err := os.Executable(); err == nil {
		event = event.Str("executable", exe)
	}
	event.Msg("session started")
}
