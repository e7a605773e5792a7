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

package frame

import (
	"encoding/binary"
	"fmt"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
)

// Kind classifies a receive event by its length alone.
type Kind int

const (
	// KindOther is any length the broadcaster ignores.
	KindOther Kind = iota
	// KindFull is a complete frame, handed to the command consumer.
	KindFull
	// KindAborted is a truncated frame, which clears the busy indicators.
	KindAborted
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindAborted:
		return "aborted"
	default:
		return "other"
	}
}

// Classify maps an event length to its Kind.
func Classify(n int) Kind {
	switch n {
	case Size:
		return KindFull
	case AbortedSize:
		return KindAborted
	default:
		return KindOther
	}
}

// Frame is a decoded DF2301Q frame.
type Frame struct {
	Data     []byte
	Length   uint16
	Checksum uint16
	Type     byte
	Cmd      byte
	Seq      byte
}

// Selector returns the byte at OffsetLength.
func (f *Frame) Selector() byte {
	return byte(f.Length)
}

// CommandWord returns the byte at OffsetCommandWord, or zero when the
// frame carries no data.
func (f *Frame) CommandWord() byte {
	if len(f.Data) == 0 {
		return 0
	}
	return f.Data[0]
}

// ChecksumValid reports whether the transmitted checksum matches.
func (f *Frame) ChecksumValid() bool {
	return f.Checksum == Checksum(f.Type, f.Cmd, f.Seq, f.Data)
}

func (f *Frame) String() string {
	return fmt.Sprintf("type=0x%02X cmd=0x%02X seq=%d data=% X", f.Type, f.Cmd, f.Seq, f.Data)
}

// Decode parses one frame from the start of buf. The header is checked
// first; the tail is expected right after the checksum at the position the
// length field implies. Bytes after the tail are ignored. The checksum is
// reported, not enforced; see Frame.ChecksumValid.
func Decode(buf []byte) (*Frame, error) {
	if len(buf) < 2 || buf[0] != HeaderLow || buf[1] != HeaderHigh {
		return nil, scoreboard.NewFrameError("decode", scoreboard.ErrBadHeader, buf)
	}
	if len(buf) < Overhead {
		return nil, scoreboard.NewFrameError("decode", scoreboard.ErrShortFrame, buf)
	}

	length := binary.LittleEndian.Uint16(buf[OffsetLength:])
	if length > MaxDataLength {
		return nil, scoreboard.NewFrameError("decode", scoreboard.ErrBadLength, buf)
	}
	total := Overhead + int(length)
	if len(buf) < total {
		return nil, scoreboard.NewFrameError("decode", scoreboard.ErrShortFrame, buf)
	}
	if buf[total-1] != Tail {
		return nil, scoreboard.NewFrameError("decode", scoreboard.ErrBadTail, buf)
	}

	dataEnd := OffsetData + int(length)
	data := make([]byte, length)
	copy(data, buf[OffsetData:dataEnd])
	return &Frame{
		Length:   length,
		Type:     buf[OffsetType],
		Cmd:      buf[OffsetCmd],
		Seq:      buf[OffsetSeq],
		Data:     data,
		Checksum: binary.LittleEndian.Uint16(buf[dataEnd:]),
	}, nil
}

// Event is a full receive event read positionally: the selector at
// OffsetLength and the command word at OffsetCommandWord. Bytes 3 to 6
// are carried but not interpreted.
type Event struct {
	Raw         [Size]byte
	Selector    byte
	CommandWord byte
}

// Inspect reads a full receive event the way the broadcaster acts on it.
// The header must match. A command event must also end in the tail byte;
// other selectors are taken on the header alone.
func Inspect(buf []byte) (*Event, error) {
	if len(buf) < 2 || buf[0] != HeaderLow || buf[1] != HeaderHigh {
		return nil, scoreboard.NewFrameError("inspect", scoreboard.ErrBadHeader, buf)
	}
	if len(buf) < Size {
		return nil, scoreboard.NewFrameError("inspect", scoreboard.ErrShortFrame, buf)
	}

	ev := &Event{
		Selector:    buf[OffsetLength],
		CommandWord: buf[OffsetCommandWord],
	}
	copy(ev.Raw[:], buf)
	if ev.Selector == SelectorCommand && ev.Raw[Size-1] != Tail {
		return nil, scoreboard.NewFrameError("inspect", scoreboard.ErrBadTail, buf)
	}
	return ev, nil
}

// ChecksumValid reports whether the event is also a well-formed frame
// with a matching checksum.
func (e *Event) ChecksumValid() bool {
	f, err := Decode(e.Raw[:])
	return err == nil && f.ChecksumValid()
}

func (e *Event) String() string {
	return fmt.Sprintf("selector=0x%02X word=0x%02X raw=% X", e.Selector, e.CommandWord, e.Raw)
}

// Encode serialises f, deriving the length and checksum from its fields.
func Encode(f *Frame) ([]byte, error) {
	if len(f.Data) > MaxDataLength {
		return nil, fmt.Errorf("%w: %d data bytes", scoreboard.ErrBadLength, len(f.Data))
	}
	out := make([]byte, 0, Overhead+len(f.Data))
	out = append(out, HeaderLow, HeaderHigh)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(f.Data)))
	out = append(out, f.Type, f.Cmd, f.Seq)
	out = append(out, f.Data...)
	out = binary.LittleEndian.AppendUint16(out, Checksum(f.Type, f.Cmd, f.Seq, f.Data))
	return append(out, Tail), nil
}

// NewCommandFrame builds the frame the module sends when it recognises
// the phrase bound to cmd.
func NewCommandFrame(seq byte, cmd scoreboard.Command) *Frame {
	return &Frame{
		Type: TypeNotify,
		Cmd:  CmdASRResult,
		Seq:  seq,
		Data: []byte{byte(cmd), 0x00, 0x00},
	}
}

// NewStatusFrame builds a two byte status notification.
func NewStatusFrame(seq, status byte) *Frame {
	return &Frame{
		Type: TypeNotify,
		Cmd:  CmdNotifyStatus,
		Seq:  seq,
		Data: []byte{status, 0x00},
	}
}
