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

// Package frame decodes and encodes DF2301Q voice module UART frames.
//
// Wire layout, all multi-byte fields little-endian:
//
//	F4 F5 | len(2) | type | cmd | seq | data[len] | checksum(2) | FB
package frame

import scoreboard "github.com/ZaparooProject/go-scoreboard"

// Frame delimiters.
const (
	HeaderLow  byte = 0xF4
	HeaderHigh byte = 0xF5
	Tail       byte = 0xFB
)

// Frame sizes.
const (
	// Size is a complete command frame: ten bytes of framing plus three
	// data bytes.
	Size = scoreboard.RxBufferSize
	// AbortedSize is the event length the module produces when a phrase is
	// abandoned mid-transfer.
	AbortedSize = Size - 1
	// Overhead is every byte that is not data.
	Overhead = 10
	// MaxDataLength is the largest data field the module sends.
	MaxDataLength = 8
)

// Field offsets.
const (
	OffsetLength      = 2
	OffsetType        = 4
	OffsetCmd         = 5
	OffsetSeq         = 6
	OffsetData        = 7
	OffsetCommandWord = OffsetData
)

// Selector values found at OffsetLength. The byte doubles as the low
// byte of the data length.
const (
	SelectorStatus  byte = 0x02
	SelectorCommand byte = 0x03
)

// Message types.
const (
	TypeCmdUp   byte = 0xA0
	TypeCmdDown byte = 0xA1
	TypeAck     byte = 0xA2
	TypeNotify  byte = 0xA3
)

// Message commands.
const (
	CmdASRResult    byte = 0x91
	CmdPlayVoice    byte = 0x92
	CmdGetFlashUID  byte = 0x93
	CmdGetVersion   byte = 0x94
	CmdResetModule  byte = 0x95
	CmdSetConfig    byte = 0x96
	CmdEnterOTA     byte = 0x97
	CmdNotifyStatus byte = 0x9A
	CmdAckCommon    byte = 0xAA
)
