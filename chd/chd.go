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

// Package chd provides parsing for CHD (Compressed Hunks of Data) disc images.
// CHD is MAME's compressed disc image format, widely used by RetroArch and other emulators.
//
// This package exposes only the raw 2352-byte CD sector view of a CHD file.
// Locating a filesystem's own volume structures within that raw sector stream
// is the caller's job (CD-I's volume scan looks nothing like ISO9660's, so no
// filesystem-specific sector-offset heuristics live here).
package chd

import (
	"fmt"
	"io"
	"os"
)

// CHD represents a CHD (Compressed Hunks of Data) disc image, reduced to
// the raw sector plumbing a CD-I volume scan needs: header geometry and
// the hunk map. The track-list/metadata chain (CHT2/CHTR/CHCD) MAME
// stores alongside CD CHDs describes per-track boundaries for CD audio
// players; CD-I's own Disc Label and Path Table already give this
// package everything it needs to find sector 0 and walk the volume, so
// that chain is never parsed here.
type CHD struct {
	file    *os.File
	header  *Header
	hunkMap *HunkMap
}

// Open opens a CHD file and parses its header and hunk map.
func Open(path string) (*CHD, error) {
	file, err := os.Open(path) //nolint:gosec // Path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("open CHD file: %w", err)
	}

	chd := &CHD{file: file}

	if err := chd.init(); err != nil {
		_ = file.Close()
		return nil, err
	}

	return chd, nil
}

// init initializes the CHD by parsing the header and building the hunk map.
func (c *CHD) init() error {
	header, err := parseHeader(c.file)
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	c.header = header

	hunkMap, err := NewHunkMap(c.file, header)
	if err != nil {
		return fmt.Errorf("create hunk map: %w", err)
	}
	c.hunkMap = hunkMap

	return nil
}

// Close closes the CHD file.
func (c *CHD) Close() error {
	if c.file != nil {
		if err := c.file.Close(); err != nil {
			return fmt.Errorf("close CHD file: %w", err)
		}
	}
	return nil
}

// Header returns the parsed CHD header.
func (c *CHD) Header() *Header {
	return c.header
}

// Size returns the total logical size (uncompressed) of the CHD data.
func (c *CHD) Size() int64 {
	return int64(c.header.LogicalBytes) //nolint:gosec // LogicalBytes is bounded by file size
}

// RawSectorReader returns an io.ReaderAt that provides access to raw
// 2352-byte sectors, starting at the first track of the disc. This is
// the view CD-I's sector engine (and any other volume-layer parser)
// consumes: it makes no assumption about what filesystem, if any, is
// present in the data.
func (c *CHD) RawSectorReader() io.ReaderAt {
	return &sectorReader{chd: c}
}

// RawSize returns the size, in bytes, of the raw 2352-byte-sector view
// returned by RawSectorReader.
func (c *CHD) RawSize() int64 {
	unitBytes := int64(c.header.UnitBytes)
	if unitBytes == 0 {
		unitBytes = 2448
	}
	numHunks := int64(c.hunkMap.NumHunks())
	sectorsPerHunk := int64(c.header.HunkBytes) / unitBytes
	return numHunks * sectorsPerHunk * rawSectorSize
}

// sectorReader implements io.ReaderAt over a CHD's decompressed hunks,
// presenting them as a flat sequence of raw 2352-byte CD sectors.
type sectorReader struct {
	chd *CHD
}

// sectorLocation holds the computed location of a sector within CHD hunks.
type sectorLocation struct {
	hunkIdx        uint32
	sectorInHunk   int64
	offsetInSector int64
}

// rawSectorSize is the size of raw CD sector data (without subchannel).
const rawSectorSize = 2352

// computeSectorLocation calculates which hunk and sector contains the given offset.
func computeSectorLocation(offset, hunkBytes, unitBytes int64) sectorLocation {
	sectorsPerHunk := hunkBytes / unitBytes
	sector := offset / rawSectorSize
	return sectorLocation{
		hunkIdx:        uint32(sector / sectorsPerHunk), //nolint:gosec // Sector index bounded by file size
		sectorInHunk:   sector % sectorsPerHunk,
		offsetInSector: offset % rawSectorSize,
	}
}

// extractSectorData returns the byte range within hunkData holding the
// requested raw sector bytes.
func extractSectorData(loc sectorLocation, unitBytes int64) (start, length int64) {
	sectorOffset := loc.sectorInHunk * unitBytes
	return sectorOffset + loc.offsetInSector, rawSectorSize - loc.offsetInSector
}

// clampDataLength bounds the data length to available data and sector limits.
func clampDataLength(dataStart, dataLen int64, hunkLen int, loc sectorLocation) int64 {
	if dataStart+dataLen > int64(hunkLen) {
		dataLen = int64(hunkLen) - dataStart
	}
	if dataLen > rawSectorSize-loc.offsetInSector {
		dataLen = rawSectorSize - loc.offsetInSector
	}
	return dataLen
}

// ReadAt reads raw sector data at the given byte offset.
func (sr *sectorReader) ReadAt(dest []byte, off int64) (int, error) {
	if len(dest) == 0 {
		return 0, nil
	}

	hunkBytes := int64(sr.chd.hunkMap.HunkBytes())
	unitBytes := int64(sr.chd.header.UnitBytes)
	if unitBytes == 0 {
		unitBytes = 2448 // Default CD sector + subchannel
	}

	totalRead := 0
	remaining := len(dest)
	currentOff := off

	for remaining > 0 {
		loc := computeSectorLocation(currentOff, hunkBytes, unitBytes)

		hunkData, err := sr.chd.hunkMap.ReadHunk(loc.hunkIdx)
		if err != nil {
			if totalRead > 0 {
				return totalRead, nil
			}
			return 0, fmt.Errorf("read hunk %d: %w", loc.hunkIdx, err)
		}

		dataStart, dataLen := extractSectorData(loc, unitBytes)
		if dataStart >= int64(len(hunkData)) {
			break
		}

		dataLen = clampDataLength(dataStart, dataLen, len(hunkData), loc)
		toCopy := min(int(dataLen), remaining)

		copy(dest[totalRead:], hunkData[dataStart:dataStart+int64(toCopy)])
		totalRead += toCopy
		remaining -= toCopy
		currentOff += int64(toCopy)
	}

	if totalRead == 0 {
		return 0, io.EOF
	}

	return totalRead, nil
}
