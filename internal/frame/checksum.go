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

// Checksum computes the DF2301Q checksum: the 16-bit sum of the type, cmd
// and seq bytes and every data byte.
func Checksum(msgType, cmd, seq byte, data []byte) uint16 {
	sum := uint16(msgType) + uint16(cmd) + uint16(seq)
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
