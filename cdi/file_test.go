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

// TestFile_Blocks_InterleavedDemux builds a 10-sector image where file
// numbers alternate between 3 and 4 (interleaved real-time playback) and
// checks that File.Blocks(nil, nil) for file_number=3 yields exactly the
// sectors whose sub-header file_number matches, stopping at the image's
// final EOF sector regardless of which file it belongs to.
func TestFile_Blocks_InterleavedDemux(t *testing.T) {
	fileNumbers := []byte{3, 4, 3, 3, 4, 3, 4, 4, 3, 3}

	var raw []byte
	for i, fn := range fileNumbers {
		submode := byte(0x08) // Data, Form1
		if i == len(fileNumbers)-1 {
			submode |= 0x80 // EOF
		}
		raw = append(raw, buildFramedSector(fn, 0, submode, 0x00, make([]byte, 2048))...)
	}

	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}

	f := &File{Number: 3, FirstLBN: 0, image: img, blockOffset: 0}

	var got []int64
	for sec := range f.Blocks(nil, nil) {
		got = append(got, sec.Index())
	}

	want := []int64{0, 2, 3, 5, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestFile_Records builds a 5-sector real-time file (audio on channel 1
// and video on channel 2, EOR closing the first record after sector 2,
// EOF closing the second after sector 4) and checks the record/channel
// breakdown.
func TestFile_Records(t *testing.T) {
	type sec struct {
		channel byte
		submode byte
	}
	layout := []sec{
		{1, 0x64},        // audio, form2, realtime
		{2, 0x42},        // video, realtime
		{1, 0x64 | 0x01}, // audio + EOR closes record 0
		{2, 0x42},
		{1, 0x64 | 0x80}, // audio + EOF closes record 1
	}

	var raw []byte
	for _, s := range layout {
		data := make([]byte, 2324)
		raw = append(raw, buildFramedSector(0, s.channel, s.submode, 0x00, data)...)
	}

	img, err := OpenImage(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}

	f := &File{Number: 0, FirstLBN: 0, image: img, blockOffset: 0}
	recs, err := f.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}

	r0 := recs[0]
	if r0.StartIndex != 0 {
		t.Fatalf("recs[0].StartIndex = %d, want 0", r0.StartIndex)
	}
	if ch := r0.Channels[1]; ch == nil || ch.Audio != 2 {
		t.Fatalf("recs[0] channel 1 audio count = %+v, want 2", ch)
	}
	if ch := r0.Channels[2]; ch == nil || ch.Video != 1 {
		t.Fatalf("recs[0] channel 2 video count = %+v, want 1", ch)
	}

	r1 := recs[1]
	if r1.StartIndex != 3 {
		t.Fatalf("recs[1].StartIndex = %d, want 3", r1.StartIndex)
	}
	if ch := r1.Channels[2]; ch == nil || ch.Video != 1 {
		t.Fatalf("recs[1] channel 2 video count = %+v, want 1", ch)
	}
	if ch := r1.Channels[1]; ch == nil || ch.Audio != 1 {
		t.Fatalf("recs[1] channel 1 audio count = %+v, want 1", ch)
	}
}
