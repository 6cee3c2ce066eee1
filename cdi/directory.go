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

import "fmt"

// Directory is one Path Table entry together with the file records
// parsed out of the directory data it points to. The first two records
// of every non-empty directory are always "." and ".."; Contents skips
// them, matching what a caller walking the filesystem actually wants.
type Directory struct {
	Entry *PathTableEntry

	all []*File
}

// Root reports whether this directory is the filesystem root (the
// unique Path Table entry whose name is a single NUL byte).
func (d *Directory) Root() bool {
	return d.Entry.NameSize == 1 && d.Entry.Name == "\x00"
}

// FullName is this directory's root-relative path; the root itself is "/".
func (d *Directory) FullName() string {
	return d.Entry.FullName
}

// Contents returns this directory's entries, excluding "." and "..".
func (d *Directory) Contents() []*File {
	if len(d.all) <= 2 {
		return nil
	}
	return d.all[2:]
}

// parseDirectoryFiles reads every file record out of the 2048-byte-
// sector-aligned directory data referenced by entry.DirAddr, stopping
// at the first zero-length record_size byte.
func parseDirectoryFiles(img *Image, blockOffset int64, entry *PathTableEntry, dirLBNs map[uint32]bool) ([]*File, error) {
	startSector := blockOffset + int64(entry.DirAddr)
	var files []*File
	cursor := 0

	for {
		sizeByte, err := blockBytes(img, startSector, cursor, 1)
		if err != nil {
			return nil, fmt.Errorf("read directory %q record size: %w", entry.FullName, err)
		}
		recordSize := int(sizeByte[0])
		if recordSize == 0 {
			break
		}

		recordBytes, err := blockBytes(img, startSector, cursor, recordSize)
		if err != nil {
			return nil, fmt.Errorf("read directory %q record: %w", entry.FullName, err)
		}

		f, err := parseFileRecord(recordBytes, img, blockOffset, entry.FullName, dirLBNs)
		if err != nil {
			return nil, fmt.Errorf("parse directory %q record: %w", entry.FullName, err)
		}

		files = append(files, f)
		cursor += recordSize
	}

	return files, nil
}
