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
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-scoreboard/pkg/advdata"
)

// Error categories for retry and drop handling
var (
	// Transport errors - potentially retryable
	ErrTransportTimeout  = errors.New("transport timeout")
	ErrTransportWrite    = errors.New("transport write failed")
	ErrTransportRead     = errors.New("transport read failed")
	ErrTransportClosed   = errors.New("transport is closed")
	ErrTransportNotReady = errors.New("transport not ready")

	// Frame errors - the frame is dropped, never surfaced to the user
	ErrBadHeader        = errors.New("frame header mismatch")
	ErrBadTail          = errors.New("frame tail mismatch")
	ErrBadLength        = errors.New("frame length out of range")
	ErrShortFrame       = errors.New("frame truncated")
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// Device errors - generally not retryable
	ErrDeviceNotFound     = errors.New("device not found")
	ErrRadioUnavailable   = errors.New("radio unavailable")
	ErrDisplayUnavailable = errors.New("display unavailable")

	// Data errors - not retryable
	ErrInvalidParameter       = errors.New("invalid parameter")
	ErrInvalidPayload         = errors.New("invalid scoreboard payload")
	ErrMalformedAdvertisement = advdata.ErrMalformed
)

// ErrorType represents the category of error for retry logic
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout error
	ErrorTypeTimeout
)

// TransportError wraps link, radio and display errors with the device
// that produced them.
type TransportError struct {
	Err       error     // Underlying error
	Op        string    // Operation that failed
	Port      string    // Port or device identifier
	Type      ErrorType // Error category
	Retryable bool      // Whether the error is retryable
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FrameError reports why a received frame was dropped, with its bytes.
type FrameError struct {
	Err  error
	Op   string
	Data []byte
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s: %v [%s]", e.Op, e.Err, formatHexBytes(e.Data))
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// DropReason returns a short label for a frame error, used as a metric
// label and in debug output.
func DropReason(err error) string {
	switch {
	case errors.Is(err, ErrBadHeader):
		return "bad_header"
	case errors.Is(err, ErrBadTail):
		return "bad_tail"
	case errors.Is(err, ErrBadLength):
		return "bad_length"
	case errors.Is(err, ErrShortFrame):
		return "short"
	case errors.Is(err, ErrChecksumMismatch):
		return "checksum"
	default:
		return "other"
	}
}

// IsRetryable returns true if the error is potentially retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrTransportNotReady),
		errors.Is(err, ErrRadioUnavailable):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the device is gone and the
// node loop should stop. This is distinct from IsRetryable which
// indicates whether a single operation can be retried.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrorTypePermanent
	}

	if isDeviceGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrTransportClosed),
		errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// Windows error codes for device disconnection detection.
const (
	errAccessDenied syscall.Errno = 5   // ERROR_ACCESS_DENIED
	errGenFailure   syscall.Errno = 31  // ERROR_GEN_FAILURE
	errNoSuchDevice syscall.Errno = 433 // ERROR_NO_SUCH_DEVICE
)

// isDeviceGoneError checks for OS-level errors raised when a USB serial
// adapter is unplugged during I/O.
func isDeviceGoneError(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}

	//nolint:exhaustive // Only checking specific device-gone errors
	switch errno {
	case syscall.EIO, syscall.ENXIO, syscall.ENODEV:
		return true
	}

	if runtime.GOOS == "windows" {
		//nolint:exhaustive // Only checking specific device-gone errors
		switch errno {
		case errAccessDenied, errGenFailure, errNoSuchDevice:
			return true
		}
	}
	return false
}

// NewTransportError creates a standard transport error with consistent formatting
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a timeout error for transport operations
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewTransportReadError creates a read error (transient)
func NewTransportReadError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportRead, cause), ErrorTypeTransient)
}

// NewTransportWriteError creates a write error (transient)
func NewTransportWriteError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportWrite, cause), ErrorTypeTransient)
}

// NewDeviceNotFoundError creates a device not found error (permanent)
func NewDeviceNotFoundError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrDeviceNotFound, ErrorTypePermanent)
}

// NewFrameError wraps a frame validation failure with a copy of the frame.
func NewFrameError(op string, err error, data []byte) *FrameError {
	return &FrameError{Op: op, Err: err, Data: bytes.Clone(data)}
}

// Burst is one receive event kept for failure reports.
type Burst struct {
	At   time.Time
	Gap  time.Duration // since the previous burst, zero for the first
	Data []byte
}

func (b Burst) String() string {
	return fmt.Sprintf("+%-6s %s", b.Gap.Round(time.Millisecond), formatHexBytes(b.Data))
}

// HistoryError is a link failure carrying the bursts the link delivered
// just before it failed.
//
//	if h := scoreboard.History(err); h != nil {
//	    log.Print(h.Dump())
//	}
type HistoryError struct {
	Err    error
	Link   LinkType
	Port   string
	Bursts []Burst
}

func (e *HistoryError) Error() string {
	return e.Err.Error()
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// Dump renders the bursts one per line, oldest first.
func (e *HistoryError) Dump() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "%s %s: %d bursts before failure\n", e.Link, e.Port, len(e.Bursts))
	for _, b := range e.Bursts {
		sb.WriteString("  ")
		sb.WriteString(b.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatHexBytes formats a byte slice as space-separated hex values
func formatHexBytes(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	const limit = 32
	if len(data) > limit {
		return fmt.Sprintf("% X ... (%d bytes total)", data[:limit], len(data))
	}
	return fmt.Sprintf("% X", data)
}

// BurstHistory is a ring of the most recent receive events of one link.
// It is not safe for concurrent use.
type BurstHistory struct {
	link LinkType
	port string
	ring []Burst
	last time.Time
	next int
	full bool
}

// NewBurstHistory keeps up to size bursts; size <= 0 means 16.
func NewBurstHistory(link LinkType, port string, size int) *BurstHistory {
	if size <= 0 {
		size = 16
	}
	return &BurstHistory{link: link, port: port, ring: make([]Burst, size)}
}

// Add records ev, overwriting the oldest burst once the ring is full.
func (h *BurstHistory) Add(ev RxEvent) {
	b := Burst{At: ev.At, Data: append([]byte(nil), ev.Bytes()...)}
	if !h.last.IsZero() {
		b.Gap = ev.At.Sub(h.last)
	}
	h.last = ev.At

	h.ring[h.next] = b
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.full = true
	}
}

// Bursts returns the recorded bursts, oldest first.
func (h *BurstHistory) Bursts() []Burst {
	if !h.full {
		return append([]Burst(nil), h.ring[:h.next]...)
	}
	out := make([]Burst, 0, len(h.ring))
	out = append(out, h.ring[h.next:]...)
	return append(out, h.ring[:h.next]...)
}

// Wrap attaches the recorded bursts to err. A nil err stays nil.
func (h *BurstHistory) Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &HistoryError{Err: err, Link: h.link, Port: h.port, Bursts: h.Bursts()}
}

// History returns the burst history attached to err, if any.
func History(err error) *HistoryError {
	var he *HistoryError
	if errors.As(err, &he) {
		return he
	}
	return nil
}
