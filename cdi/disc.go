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
	"io"
	"iter"
)

// Disc is a fully opened CD-I volume: the sector grid, every Standard
// Disc Label, the Path Table, and every directory's parsed contents.
type Disc struct {
	Image       *Image
	Labels      []*StandardDiscLabel
	BlockOffset int64
	PathTable   []*PathTableEntry
	Directories []*Directory
}

// Open reads a complete CD-I volume out of r, which must expose size
// bytes of raw sector data (framed or headerless, auto-detected). It
// scans the Disc Label, parses the Path Table the first Standard label
// names, and parses every directory's file records.
//
// Opening an image whose label scan never reaches a Terminator fails
// with ErrMissingTerminator and no Disc. The Standard labels the scan
// collected before that error are not returned by Open, and no other
// exported function returns them.
func Open(r io.ReaderAt, size int64) (*Disc, error) {
	img, err := OpenImage(r, size)
	if err != nil {
		return nil, err
	}

	labels, blockOffset, err := scanDiscLabels(img)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, ErrMissingDiscLabel
	}
	label := labels[0]

	pt, err := ParsePathTable(img, blockOffset, label.PathTableAddr, label.PathTableSize)
	if err != nil {
		return nil, fmt.Errorf("parse path table: %w", err)
	}

	dirLBNs := make(map[uint32]bool, len(pt))
	for _, e := range pt {
		dirLBNs[e.DirAddr] = true
	}

	dirs := make([]*Directory, len(pt))
	for i, e := range pt {
		files, ferr := parseDirectoryFiles(img, blockOffset, e, dirLBNs)
		if ferr != nil {
			return nil, ferr
		}
		dirs[i] = &Directory{Entry: e, all: files}
	}

	return &Disc{
		Image:       img,
		Labels:      labels,
		BlockOffset: blockOffset,
		PathTable:   pt,
		Directories: dirs,
	}, nil
}

// Root returns the filesystem root directory.
func (d *Disc) Root() *Directory {
	for _, dir := range d.Directories {
		if dir.Root() {
			return dir
		}
	}
	return nil
}

// Files iterates every file in every directory of the volume, skipping
// "." and "..".
func (d *Disc) Files() iter.Seq[*File] {
	return func(yield func(*File) bool) {
		for _, dir := range d.Directories {
			for _, f := range dir.Contents() {
				if !yield(f) {
					return
				}
			}
		}
	}
}

// GetFile looks up a file by its absolute path (e.g. "/MDIR/GAME.DAT").
// It returns nil if no file in the volume has that FullName.
func (d *Disc) GetFile(fullName string) *File {
	for f := range d.Files() {
		if f.FullName == fullName {
			return f
		}
	}
	return nil
}
