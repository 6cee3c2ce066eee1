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
	"encoding/binary"
	"testing"
)

// buildPathTableBlock writes a path table at LBN 17 (two entries: root
// and "MDIR") into a fresh image of enough Form-1 sectors to hold it.
func buildPathTableBlock(t *testing.T) (*Image, int64) {
	t.Helper()

	data := make([]byte, 2048)
	pos := 0

	// root entry: name_size=1, ear_size=0, dir_addr=18, parent_idx=1, name=0x00
	data[pos] = 1
	data[pos+1] = 0
	binary.BigEndian.PutUint32(data[pos+2:pos+6], 18)
	binary.BigEndian.PutUint16(data[pos+6:pos+8], 1)
	data[pos+8] = 0x00
	pos += 8 + 1 + 1 // name_size=1 is odd, one pad byte

	// MDIR entry: name_size=4, ear_size=0, dir_addr=19, parent_idx=1, name="MDIR"
	data[pos] = 4
	data[pos+1] = 0
	binary.BigEndian.PutUint32(data[pos+2:pos+6], 19)
	binary.BigEndian.PutUint16(data[pos+6:pos+8], 1)
	copy(data[pos+8:pos+12], "MDIR")
	pos += 8 + 4 // name_size=4 is even, no pad

	sectors := make([]byte, 0, rawSectorSize*18)
	for i := 0; i < 17; i++ {
		sectors = append(sectors, buildFramedSector(0, 0, 0x08, 0x00, make([]byte, 2048))...)
	}
	sectors = append(sectors, buildFramedSector(0, 0, 0x08, 0x00, data)...)

	img, err := OpenImage(bytes.NewReader(sectors), int64(len(sectors)))
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	return img, int64(pos)
}

func TestParsePathTable_Walk(t *testing.T) {
	img, size := buildPathTableBlock(t)

	entries, err := ParsePathTable(img, 0, 17, uint32(size))
	if err != nil {
		t.Fatalf("ParsePathTable: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	root := entries[0]
	if root.Name != "\x00" || root.FullName != "/" {
		t.Fatalf("root = %+v", root)
	}

	mdir := entries[1]
	if mdir.Name != "MDIR" {
		t.Fatalf("mdir.Name = %q, want MDIR", mdir.Name)
	}
	if mdir.ParentIdx != 1 {
		t.Fatalf("mdir.ParentIdx = %d, want 1", mdir.ParentIdx)
	}
	if mdir.FullName != "/MDIR" {
		t.Fatalf("mdir.FullName = %q, want /MDIR", mdir.FullName)
	}
	if mdir.DirAddr != 19 {
		t.Fatalf("mdir.DirAddr = %d, want 19", mdir.DirAddr)
	}
}
