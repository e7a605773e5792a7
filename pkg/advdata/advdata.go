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

// Package advdata encodes and parses Bluetooth LE advertising data: a
// sequence of length-prefixed records, each carrying a one byte type.
package advdata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Type is an advertising data record type.
type Type byte

// Record types used by the scoreboard.
const (
	TypeFlags            Type = 0x01
	TypeShortName        Type = 0x08
	TypeCompleteName     Type = 0x09
	TypeURI              Type = 0x24
	TypeManufacturerData Type = 0xFF
)

// Flag bits carried by a TypeFlags record.
const (
	FlagGeneralDiscoverable byte = 0x02
	FlagNoBREDR             byte = 0x04
)

// MaxRecordData is the largest payload one record can carry: the length
// byte covers the type byte plus the data.
const MaxRecordData = 254

var (
	// ErrMalformed reports a record whose declared length runs past the
	// end of the buffer.
	ErrMalformed = errors.New("malformed advertising data")
	// ErrRecordTooLarge reports a record that cannot be length prefixed.
	ErrRecordTooLarge = errors.New("advertising record too large")
)

// Record is a single advertising data element.
type Record struct {
	Data []byte
	Type Type
}

// IsName reports whether r carries a short or complete local name.
func (r Record) IsName() bool {
	return r.Type == TypeShortName || r.Type == TypeCompleteName
}

// CompanyID returns the little-endian company identifier that prefixes a
// manufacturer data record.
func (r Record) CompanyID() (uint16, bool) {
	if r.Type != TypeManufacturerData || len(r.Data) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r.Data), true
}

func (r Record) String() string {
	if r.IsName() {
		return fmt.Sprintf("0x%02X %q", byte(r.Type), r.Data)
	}
	return fmt.Sprintf("0x%02X % X", byte(r.Type), r.Data)
}

// Flags builds a flags record.
func Flags(flags byte) Record {
	return Record{Type: TypeFlags, Data: []byte{flags}}
}

// CompleteName builds a complete local name record.
func CompleteName(name string) Record {
	return Record{Type: TypeCompleteName, Data: []byte(name)}
}

// ManufacturerData builds a manufacturer specific record. The company
// identifier is written little-endian ahead of data.
func ManufacturerData(companyID uint16, data []byte) Record {
	buf := make([]byte, 2, 2+len(data))
	binary.LittleEndian.PutUint16(buf, companyID)
	return Record{Type: TypeManufacturerData, Data: append(buf, data...)}
}

// URI builds a URI record. An empty uri is valid.
func URI(uri []byte) Record {
	return Record{Type: TypeURI, Data: bytes.Clone(uri)}
}

// Parse splits raw into records. A zero length byte ends the data early,
// as radios pad short payloads with zeros. On a malformed record Parse
// returns the records decoded before it together with ErrMalformed.
func Parse(raw []byte) ([]Record, error) {
	var records []Record
	for i := 0; i < len(raw); {
		length := int(raw[i])
		if length == 0 {
			break
		}
		end := i + 1 + length
		if end > len(raw) {
			return records, fmt.Errorf("%w: record at offset %d declares %d bytes, %d remain",
				ErrMalformed, i, length, len(raw)-i-1)
		}
		records = append(records, Record{
			Type: Type(raw[i+1]),
			Data: bytes.Clone(raw[i+2 : end]),
		})
		i = end
	}
	return records, nil
}

// Encode serialises records in order.
func Encode(records []Record) ([]byte, error) {
	size := 0
	for _, r := range records {
		if len(r.Data) > MaxRecordData {
			return nil, fmt.Errorf("%w: type 0x%02X carries %d bytes", ErrRecordTooLarge, byte(r.Type), len(r.Data))
		}
		size += 2 + len(r.Data)
	}

	out := make([]byte, 0, size)
	for _, r := range records {
		out = append(out, byte(len(r.Data)+1), byte(r.Type))
		out = append(out, r.Data...)
	}
	return out, nil
}

// Find returns the first record of type t.
func Find(records []Record, t Type) (Record, bool) {
	for _, r := range records {
		if r.Type == t {
			return r, true
		}
	}
	return Record{}, false
}
