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

// Recorder receives operational counters from the broadcaster and observer
// loops.
type Recorder interface {
	// FrameReceived counts a receive event by classification.
	FrameReceived(kind string)
	// FrameDropped counts a full frame discarded before applying, by reason.
	FrameDropped(reason string)
	// CommandApplied counts a command word applied to the match.
	CommandApplied(cmd Command)
	// AdvertisementUpdated counts an advertiser update and its outcome.
	AdvertisementUpdated(err error)
	// AdvertisementSeen counts a discovery and whether it matched.
	AdvertisementSeen(matched bool)
	// RenderCompleted counts a display push and its outcome.
	RenderCompleted(err error)
	// RenderSuppressed counts a payload identical to the snapshot.
	RenderSuppressed()
}

// NopRecorder discards all counters.
type NopRecorder struct{}

func (NopRecorder) FrameReceived(string) {}
func (NopRecorder) FrameDropped(string) {}
func (NopRecorder) CommandApplied(Command) {}
func (NopRecorder) AdvertisementUpdated(error) {}
func (NopRecorder) AdvertisementSeen(bool) {}
func (NopRecorder) RenderCompleted(error) {}
func (NopRecorder) RenderSuppressed() {}
