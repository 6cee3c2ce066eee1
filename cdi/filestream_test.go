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

func buildTwoSectorImage(t *testing.T) *Image {
	t.Helper()
	sec0 := bytes.Repeat([]byte{0xAA}, 2048)
	sec1 := bytes.Repeat([]byte{0xBB}, 2048)
	raw := append(buildFramedSector(0, 0, 0x08, 0x00, sec0), buildFramedSector(0, 0, 0x88, 0x00, sec1)...)
	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	return img
}

// TestFileStream_NonRealtime_SizeDrivenEOF checks that a non-real-time
// stream (no record/channel filter) stops exactly at File.Size bytes,
// reading across the sector boundary correctly, even though more sector
// data physically follows.
func TestFileStream_NonRealtime_SizeDrivenEOF(t *testing.T) {
	img := buildTwoSectorImage(t)
	f := &File{Size: 3000, FirstLBN: 0, image: img, blockOffset: 0}

	fs, err := f.Open(nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	data, err := fs.ReadN(-1)
	if err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	if len(data) != 3000 {
		t.Fatalf("len(data) = %d, want 3000", len(data))
	}
	for i := 0; i < 2048; i++ {
		if data[i] != 0xAA {
			t.Fatalf("data[%d] = %#x, want 0xAA", i, data[i])
		}
	}
	for i := 2048; i < 3000; i++ {
		if data[i] != 0xBB {
			t.Fatalf("data[%d] = %#x, want 0xBB", i, data[i])
		}
	}
	if !fs.EOF() {
		t.Fatalf("expected EOF after reading full file size")
	}
}

// TestFileStream_Realtime_RecordDrivenEOF checks that a record-filtered
// (real-time) stream reaches EOF once its filtered sector sequence is
// exhausted, independent of File.Size. Sector 0 carries the EOR bit, so
// it forms a complete record on its own; sector 1 (EOF-only) belongs to
// a separate, second record.
func TestFileStream_Realtime_RecordDrivenEOF(t *testing.T) {
	sec0 := bytes.Repeat([]byte{0xAA}, 2048)
	sec1 := bytes.Repeat([]byte{0xBB}, 2048)
	raw := append(buildFramedSector(0, 0, 0x09, 0x00, sec0), buildFramedSector(0, 0, 0x88, 0x00, sec1)...)
	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	f := &File{Size: 999999, FirstLBN: 0, image: img, blockOffset: 0}

	record := 0
	fs, err := f.Open(&record, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	data, err := fs.ReadN(-1)
	if err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	if len(data) != 2048 {
		t.Fatalf("len(data) = %d, want 2048 (record 0 is sector 0 only)", len(data))
	}
	if !fs.EOF() {
		t.Fatalf("expected EOF after exhausting record 0's sectors")
	}
}

// TestFileStream_Read_ImplementsIoReader exercises the io.Reader wrapper
// over ReadN in small chunks that straddle the sector boundary.
func TestFileStream_Read_ImplementsIoReader(t *testing.T) {
	img := buildTwoSectorImage(t)
	f := &File{Size: 3000, FirstLBN: 0, image: img, blockOffset: 0}

	fs, err := f.Open(nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var buf bytes.Buffer
	chunk := make([]byte, 500)
	for {
		n, err := fs.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil {
			break
		}
	}
	if buf.Len() != 3000 {
		t.Fatalf("buf.Len() = %d, want 3000", buf.Len())
	}
}
