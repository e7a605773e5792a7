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

package advdata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scoreboardAdv is a capture of a broadcaster advertising home 5, serving.
var scoreboardAdv = []byte{
	0x02, 0x01, 0x06,
	0x0C, 0x09, 'S', 'c', 'o', 'r', 'e', ' ', 'B', 'o', 'a', 'r', 'd',
	0x09, 0xFF, 0x59, 0x00, 0x05, 0x00, 0x00, 0x00, 0x01, 0x00,
}

func TestParse_Scoreboard(t *testing.T) {
	t.Parallel()

	records, err := Parse(scoreboardAdv)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, TypeFlags, records[0].Type)
	assert.True(t, records[1].IsName())
	assert.Equal(t, "Score Board", string(records[1].Data))

	id, ok := records[2].CompanyID()
	require.True(t, ok)
	assert.Equal(t, uint16(0x0059), id)
	assert.Equal(t, []byte{0x59, 0x00, 0x05, 0x00, 0x00, 0x00, 0x01, 0x00}, records[2].Data)
}

func TestParse_StopsAtZeroLength(t *testing.T) {
	t.Parallel()

	raw := append([]byte{0x02, 0x01, 0x06, 0x00}, 0xDE, 0xAD)
	records, err := Parse(raw)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	raw := []byte{0x02, 0x01, 0x06, 0x05, 0x09, 'S', 'c'}
	records, err := Parse(raw)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Len(t, records, 1, "records before the bad one are kept")
}

func TestParse_CopiesData(t *testing.T) {
	t.Parallel()

	raw := []byte{0x02, 0x09, 'A'}
	records, err := Parse(raw)
	require.NoError(t, err)
	raw[2] = 'B'
	assert.Equal(t, "A", string(records[0].Data))
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	records := []Record{
		Flags(FlagGeneralDiscoverable | FlagNoBREDR),
		CompleteName("Score Board"),
		ManufacturerData(0x0059, []byte{5, 0, 0, 0, 1, 0}),
	}
	raw, err := Encode(records)
	require.NoError(t, err)
	assert.Equal(t, scoreboardAdv, raw)

	back, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestEncode_EmptyURI(t *testing.T) {
	t.Parallel()

	raw, err := Encode([]Record{URI(nil)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x24}, raw)
}

func TestEncode_RecordTooLarge(t *testing.T) {
	t.Parallel()

	_, err := Encode([]Record{{Type: TypeManufacturerData, Data: make([]byte, MaxRecordData+1)}})
	require.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestFind(t *testing.T) {
	t.Parallel()

	records, err := Parse(scoreboardAdv)
	require.NoError(t, err)

	r, ok := Find(records, TypeManufacturerData)
	require.True(t, ok)
	assert.Len(t, r.Data, 8)

	_, ok = Find(records, TypeURI)
	assert.False(t, ok)
}

func TestRecord_CompanyIDRequiresManufacturerData(t *testing.T) {
	t.Parallel()

	_, ok := CompleteName("ab").CompanyID()
	assert.False(t, ok)
	_, ok = Record{Type: TypeManufacturerData, Data: []byte{0x59}}.CompanyID()
	assert.False(t, ok)
}

// FuzzParse checks Parse never panics and that whatever it accepts
// re-encodes to the same bytes.
func FuzzParse(f *testing.F) {
	f.Add(scoreboardAdv)
	f.Add([]byte{})
	f.Add([]byte{0xFF})
	f.Add([]byte{0x01, 0x24, 0x00})

	f.Fuzz(func(t *testing.T, raw []byte) {
		records, err := Parse(raw)
		if err != nil {
			return
		}
		out, err := Encode(records)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.HasPrefix(raw, out) {
			t.Fatalf("re-encoded % X is not a prefix of % X", out, raw)
		}
	})
}
