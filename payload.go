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
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-scoreboard/pkg/advdata"
)

const (
	// CompanyID prefixes every scoreboard manufacturer data payload.
	CompanyID uint16 = 0x0059
	// PayloadSize is the length of the manufacturer data payload.
	PayloadSize = 8
	// DeviceName is the advertised complete local name.
	DeviceName = "Score Board"
	// DefaultAdvertisingInterval is 800 units of 0.625ms.
	DefaultAdvertisingInterval = 500 * time.Millisecond
)

// Payload offsets.
const (
	offsetHomePoints  = 2
	offsetGuestPoints = 3
	offsetHomeSets    = 4
	offsetGuestSets   = 5
	offsetServing     = 6
)

// Payload is the manufacturer data that carries a MatchState over the air:
// company ID (little-endian), home points, guest points, home sets, guest
// sets, serving, one pad byte.
type Payload [PayloadSize]byte

// Encode packs s into its over-the-air form.
func Encode(s MatchState) Payload {
	var p Payload
	binary.LittleEndian.PutUint16(p[:2], CompanyID)
	p[offsetHomePoints] = s.HomePoints
	p[offsetGuestPoints] = s.GuestPoints
	p[offsetHomeSets] = s.HomeSets
	p[offsetGuestSets] = s.GuestSets
	p[offsetServing] = byte(s.Serving)
	return p
}

// ParsePayload copies manufacturer data into a Payload. Senders may omit
// the trailing pad byte.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if len(data) != PayloadSize && len(data) != PayloadSize-1 {
		return p, fmt.Errorf("%w: %d bytes", ErrInvalidPayload, len(data))
	}
	copy(p[:], data)
	return p, nil
}

// CompanyID returns the company identifier carried in the first two bytes.
func (p Payload) CompanyID() uint16 {
	return binary.LittleEndian.Uint16(p[:2])
}

// State unpacks the score fields. Values are passed through unchecked.
func (p Payload) State() MatchState {
	return MatchState{
		HomePoints:  p[offsetHomePoints],
		GuestPoints: p[offsetGuestPoints],
		HomeSets:    p[offsetHomeSets],
		GuestSets:   p[offsetGuestSets],
		Serving:     Serving(p[offsetServing]),
	}
}

func (p Payload) String() string {
	return fmt.Sprintf("% X", p[:])
}

// Advertisement is what a broadcaster puts on the air.
type Advertisement struct {
	Name     string
	Interval time.Duration
	Payload  Payload
}

// NewAdvertisement builds the default advertisement for s.
func NewAdvertisement(s MatchState) Advertisement {
	return Advertisement{
		Name:     DeviceName,
		Interval: DefaultAdvertisingInterval,
		Payload:  Encode(s),
	}
}

// Records returns the advertising data records: flags, complete name,
// manufacturer data.
func (a Advertisement) Records() []advdata.Record {
	return []advdata.Record{
		advdata.Flags(advdata.FlagNoBREDR),
		advdata.CompleteName(a.Name),
		advdata.ManufacturerData(a.Payload.CompanyID(), a.Payload[2:]),
	}
}

// ScanResponse returns the scan response records, a single empty URI.
func (a Advertisement) ScanResponse() []advdata.Record {
	return []advdata.Record{advdata.URI(nil)}
}

// Discovery is one advertisement seen by a Scanner.
type Discovery struct {
	At      time.Time
	Address string
	Records []advdata.Record
	RSSI    int16
}
