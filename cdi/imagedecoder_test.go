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
	"errors"
	"testing"
)

// TestImageDecoder_ReadAcrossSectorBoundary checks that Read
// concatenates payload bytes straddling two sectors.
func TestImageDecoder_ReadAcrossSectorBoundary(t *testing.T) {
	sec0 := bytes.Repeat([]byte{0x11}, 2048)
	sec1 := bytes.Repeat([]byte{0x22}, 2048)
	raw := append(buildFramedSector(0, 0, 0x08, 0x00, sec0), buildFramedSector(0, 0, 0x08, 0x00, sec1)...)
	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}

	dec := NewImageDecoder(img.Sectors(), false)
	defer dec.Close()

	if _, err := dec.Read(2000); err != nil {
		t.Fatalf("Read(2000): %v", err)
	}
	data, err := dec.Read(100)
	if err != nil {
		t.Fatalf("Read(100): %v", err)
	}
	for i := 0; i < 48; i++ {
		if data[i] != 0x11 {
			t.Fatalf("data[%d] = %#x, want 0x11", i, data[i])
		}
	}
	for i := 48; i < 100; i++ {
		if data[i] != 0x22 {
			t.Fatalf("data[%d] = %#x, want 0x22", i, data[i])
		}
	}
}

// TestImageDecoder_FinishAdvancesUnlessPacked checks the post-image
// positioning rule: a non-packed decoder skips the remainder of a
// partially consumed sector, a packed one picks up exactly where the
// previous image stopped.
func TestImageDecoder_FinishAdvancesUnlessPacked(t *testing.T) {
	sec0 := bytes.Repeat([]byte{0x11}, 2048)
	sec1 := bytes.Repeat([]byte{0x22}, 2048)
	raw := append(buildFramedSector(0, 0, 0x08, 0x00, sec0), buildFramedSector(0, 0, 0x08, 0x00, sec1)...)

	tests := []struct {
		name   string
		packed bool
		want   byte
	}{
		{"non_packed_advances_to_next_sector", false, 0x22},
		{"packed_preserves_position", true, 0x11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
			if err != nil {
				t.Fatalf("OpenImage: %v", err)
			}

			dec := NewImageDecoder(img.Sectors(), tt.packed)
			defer dec.Close()

			if _, err := dec.Read(10); err != nil {
				t.Fatalf("Read(10): %v", err)
			}
			dec.Finish()

			data, err := dec.Read(1)
			if err != nil {
				t.Fatalf("Read(1): %v", err)
			}
			if data[0] != tt.want {
				t.Fatalf("next byte = %#x, want %#x", data[0], tt.want)
			}
		})
	}
}

// TestImageDecoder_TruncatedImage checks that running off the end of the
// sector sequence mid-read surfaces ErrTruncatedImage.
func TestImageDecoder_TruncatedImage(t *testing.T) {
	raw := buildFramedSector(0, 0, 0x08, 0x00, bytes.Repeat([]byte{0x11}, 2048))
	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}

	dec := NewImageDecoder(img.Sectors(), false)
	defer dec.Close()

	if _, err := dec.Read(3000); !errors.Is(err, ErrTruncatedImage) {
		t.Fatalf("Read(3000) err = %v, want ErrTruncatedImage", err)
	}
}
