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
	"fmt"

	cdibinary "github.com/ZaparooProject/go-cdi/cdi/internal/binary"
)

// PathTableEntry is one entry of the Path Table: a directory's location
// and its position in the directory hierarchy. Entries are 1-indexed by
// their position in the table (ParentIdx refers to that 1-based
// position), so the mutual directory/parent relation is an index
// lookup, never a pointer cycle.
type PathTableEntry struct {
	NameSize  uint8
	EARSize   uint8
	DirAddr   uint32 // LBN of the directory's data, relative to block_offset
	ParentIdx uint16
	Name      string

	// FullName is precomputed during ParsePathTable: the root is "/",
	// and every other entry is its parent's FullName plus "/"+Name
	// (collapsing the doubled slash when the parent is the root).
	FullName string
}

// ParsePathTable reads every entry out of the Path Table referenced by a
// Standard Disc Label's path_table_address/path_table_size, in a single
// forward pass. It relies on the on-disc invariant that every entry's
// parent index is no greater than its own 1-based position, so each
// entry's FullName can be computed the moment it is read.
func ParsePathTable(img *Image, blockOffset int64, address, size uint32) ([]*PathTableEntry, error) {
	startSector := blockOffset + int64(address)
	var entries []*PathTableEntry
	var cursor int

	for cursor < int(size) {
		header, err := blockBytes(img, startSector, cursor, 8)
		if err != nil {
			return nil, fmt.Errorf("read path table entry header: %w", err)
		}
		nameSize := header[0]
		earSize := header[1]
		dirAddr := beUint32(header[2:6])
		parentIdx := beUint16(header[6:8])

		nameBytes, err := blockBytes(img, startSector, cursor+8, int(nameSize))
		if err != nil {
			return nil, fmt.Errorf("read path table entry name: %w", err)
		}
		name := cdibinary.CleanString(nameBytes)
		if nameSize == 1 && nameBytes[0] == 0 {
			name = "\x00"
		}

		entryLen := 8 + int(nameSize)
		if nameSize%2 == 1 {
			entryLen++
		}
		cursor += entryLen

		entry := &PathTableEntry{
			NameSize:  nameSize,
			EARSize:   earSize,
			DirAddr:   dirAddr,
			ParentIdx: parentIdx,
			Name:      name,
		}

		if len(entries) == 0 {
			entry.FullName = "/"
		} else {
			parentPos := int(parentIdx) - 1
			if parentPos < 0 || parentPos >= len(entries) {
				return nil, fmt.Errorf("path table entry %d has out-of-range parent %d: %w",
					len(entries)+1, parentIdx, ErrCorrupt)
			}
			parent := entries[parentPos]
			if parent.FullName == "/" {
				entry.FullName = "/" + name
			} else {
				entry.FullName = parent.FullName + "/" + name
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
