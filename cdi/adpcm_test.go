// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-cdi.
//
// go-cdi is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-cdi is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-cdi.  If not, see <https://www.gnu.org/licenses/>.

package cdi

import (
	"bytes"
	"testing"
)

// TestAudioDecoder_Level8_AllZeroYieldsSilence decodes one Level A
// (8-bit, mono) audio sector whose sound groups are entirely zero bytes
// (zero range/filter parameters, zero sample data) and checks every
// decoded sample is silence: with filter 0's coefficients both zero and
// a zero-valued sample, the delay line never leaves zero regardless of
// gain.
func TestAudioDecoder_Level8_AllZeroYieldsSilence(t *testing.T) {
	data := make([]byte, 2324)
	submode := byte(0x24) // Audio, Form2
	coding := byte(0x10)  // mono, rate 0, depth8=1
	raw := buildFramedSector(0, 0, submode, coding, data)

	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	sec, err := img.Sector(0)
	if err != nil {
		t.Fatalf("Sector(0): %v", err)
	}

	dec := NewAudioDecoder()
	samples, err := dec.DecodeSector(sec)
	if err != nil {
		t.Fatalf("DecodeSector: %v", err)
	}

	const want = 18 * 4 * 28 // 18 groups * 4 units * 28 samples
	if len(samples) != want {
		t.Fatalf("len(samples) = %d, want %d", len(samples), want)
	}
	for i, s := range samples {
		if s != 0 {
			t.Fatalf("samples[%d] = %d, want 0", i, s)
		}
	}
}

// TestAudioDecoder_RejectsNonAudioSector checks that DecodeSector refuses
// a sector that doesn't carry the Audio submode bit.
func TestAudioDecoder_RejectsNonAudioSector(t *testing.T) {
	raw := buildFramedSector(0, 0, 0x08, 0x00, make([]byte, 2048)) // Data, not Audio
	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	sec, err := img.Sector(0)
	if err != nil {
		t.Fatalf("Sector(0): %v", err)
	}

	dec := NewAudioDecoder()
	if _, err := dec.DecodeSector(sec); err == nil {
		t.Fatalf("expected error decoding a non-audio sector")
	}
}
