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
	"sync"
	"sync/atomic"

	cdibinary "github.com/ZaparooProject/go-cdi/cdi/internal/binary"
)

// rawSectorSize is the full size of one CD sector: a 16-byte CD header
// (12-byte sync pattern + 4-byte address/mode), an 8-byte sub-header
// (4 bytes repeated twice for redundancy), and up to 2324 bytes of data.
const rawSectorSize = 2352

// headerlessSectorSize is the sector size when the image carries no CD
// header, i.e. it starts directly at the sub-header.
const headerlessSectorSize = 2336

// cdSyncPattern is the 12-byte sync pattern that opens every framed
// sector: 0x00, ten 0xFF bytes, 0x00.
var cdSyncPattern = []byte{
	0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00,
}

// Image is an open CD-I disc image: a flat grid of fixed-size sectors
// read from an underlying io.ReaderAt. It does not know anything about
// Disc Labels, path tables, or files; it only resolves sector indices to
// sub-headers and payload bytes.
type Image struct {
	r          io.ReaderAt
	size       int64
	framed     bool
	numSectors int64

	mu    sync.RWMutex
	cache map[int64]*Sector

	redundancyWarnings atomic.Int64
}

// OpenImage opens r (of the given byte size) as a grid of CD-I sectors,
// detecting whether sectors carry a 16-byte CD header by sniffing the
// first 12 bytes for the sync pattern.
func OpenImage(r io.ReaderAt, size int64) (*Image, error) {
	img := &Image{r: r, size: size, cache: make(map[int64]*Sector)}

	head, err := cdibinary.ReadBytesAt(r, 0, 12)
	if err != nil {
		return nil, fmt.Errorf("sniff CD header: %w", err)
	}
	img.framed = cdibinary.BytesEqual(head, cdSyncPattern)

	stride := int64(headerlessSectorSize)
	if img.framed {
		stride = rawSectorSize
	}
	img.numSectors = size / stride

	if img.numSectors == 0 {
		return nil, fmt.Errorf("image has no complete sectors: %w", ErrInvalidImage)
	}

	sub1, err := cdibinary.ReadBytesAt(r, img.subheaderOffset(0), 4)
	if err != nil {
		return nil, fmt.Errorf("read first sub-header: %w", err)
	}
	sub2, err := cdibinary.ReadBytesAt(r, img.subheaderOffset(0)+4, 4)
	if err != nil {
		return nil, fmt.Errorf("read first sub-header copy: %w", err)
	}
	if !cdibinary.BytesEqual(sub1, sub2) {
		return nil, fmt.Errorf("first sector sub-header redundancy mismatch: %w", ErrInvalidImage)
	}

	return img, nil
}

// stride is the byte distance between consecutive sectors.
func (img *Image) stride() int64 {
	if img.framed {
		return rawSectorSize
	}
	return headerlessSectorSize
}

// subheaderOffset is the byte offset of sector idx's sub-header.
func (img *Image) subheaderOffset(idx int64) int64 {
	off := idx * img.stride()
	if img.framed {
		off += 16
	}
	return off
}

// NumSectors is the number of complete sectors in the image.
func (img *Image) NumSectors() int64 { return img.numSectors }

// RedundancyWarnings is the number of sectors (beyond the first, which is
// checked at open time and fails hard on mismatch) whose two sub-header
// copies disagreed. A non-zero count does not stop reading; it only
// indicates the underlying image may be damaged.
func (img *Image) RedundancyWarnings() int64 { return img.redundancyWarnings.Load() }

// Sector returns the sector at idx, reading and parsing it if it has not
// been read yet.
func (img *Image) Sector(idx int64) (*Sector, error) {
	if idx < 0 || idx >= img.numSectors {
		return nil, fmt.Errorf("sector %d: %w", idx, ErrEOF)
	}

	img.mu.RLock()
	s, ok := img.cache[idx]
	img.mu.RUnlock()
	if ok {
		return s, nil
	}

	subOff := img.subheaderOffset(idx)
	sub1, err := cdibinary.ReadBytesAt(img.r, subOff, 4)
	if err != nil {
		return nil, fmt.Errorf("read sector %d sub-header: %w", idx, err)
	}
	if idx != 0 {
		sub2, err := cdibinary.ReadBytesAt(img.r, subOff+4, 4)
		if err != nil {
			return nil, fmt.Errorf("read sector %d sub-header copy: %w", idx, err)
		}
		if !cdibinary.BytesEqual(sub1, sub2) {
			img.redundancyWarnings.Add(1)
		}
	}

	sh := Subheader{
		FileNumber:    sub1[0],
		ChannelNumber: sub1[1],
		SubmodeRaw:    sub1[2],
		CodingRaw:     sub1[3],
	}

	s = &Sector{
		image:     img,
		index:     idx,
		dataStart: subOff + 8,
		subheader: sh,
	}

	img.mu.Lock()
	img.cache[idx] = s
	img.mu.Unlock()

	return s, nil
}

// Sectors iterates every sector in the image from index 0, stopping
// either at the first error or at the end of the image. Exhausting the
// iterator is not itself an error.
func (img *Image) Sectors() iter.Seq[*Sector] {
	return func(yield func(*Sector) bool) {
		for idx := int64(0); idx < img.numSectors; idx++ {
			s, err := img.Sector(idx)
			if err != nil {
				return
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Sector is one parsed CD-I sector: its index, its sub-header, and a
// view onto its payload bytes.
type Sector struct {
	image     *Image
	index     int64
	dataStart int64
	subheader Subheader
}

// Index is the sector's position in the image.
func (s *Sector) Index() int64 { return s.index }

// Subheader is the sector's parsed sub-header.
func (s *Sector) Subheader() Subheader { return s.subheader }

// DataSize is the number of usable payload bytes in this sector (2048
// for Form 1, 2324 for Form 2).
func (s *Sector) DataSize() int { return s.subheader.DataSize() }

// Data reads the sector's payload bytes in [start, end).
func (s *Sector) Data(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > s.DataSize() {
		return nil, fmt.Errorf("sector %d data range [%d,%d) exceeds size %d: %w",
			s.index, start, end, s.DataSize(), ErrCorrupt)
	}
	buf, err := cdibinary.ReadBytesAt(s.image.r, s.dataStart+int64(start), end-start)
	if err != nil {
		return nil, fmt.Errorf("read sector %d data: %w", s.index, err)
	}
	return buf, nil
}
