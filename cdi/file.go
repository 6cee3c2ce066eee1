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
	"iter"
	"time"

	cdibinary "github.com/ZaparooProject/go-cdi/cdi/internal/binary"
)

// FileFlags are the bit flags of a directory file record's flags byte.
type FileFlags uint8

// Hidden is bit 0 of the flags byte.
func (f FileFlags) Hidden() bool { return f&0x01 != 0 }

// FileAttributes are the bit flags of a directory file record's
// attributes field.
type FileAttributes uint16

// Attribute bit accessors, per the Green Book layout.
func (a FileAttributes) OwnerRead() bool   { return a&(1<<0) != 0 }
func (a FileAttributes) OwnerExec() bool   { return a&(1<<2) != 0 }
func (a FileAttributes) GroupRead() bool   { return a&(1<<4) != 0 }
func (a FileAttributes) GroupExec() bool   { return a&(1<<6) != 0 }
func (a FileAttributes) WorldRead() bool   { return a&(1<<8) != 0 }
func (a FileAttributes) WorldExec() bool   { return a&(1<<10) != 0 }
func (a FileAttributes) CDDA() bool        { return a&(1<<14) != 0 }
func (a FileAttributes) IsDirectory() bool { return a&(1<<15) != 0 }

// File is one record from a Directory: a named, sized, dated reference
// to data starting at a given logical block. Interleaved files (Number
// != 0) share sector ranges with other files; the sub-header's
// file_number is what separates their sectors back out.
type File struct {
	RecordSize   uint8
	EARSize      uint8
	FirstLBN     uint32
	Size         uint32
	CreationDate time.Time
	Flags        FileFlags
	InterleaveA  uint8
	InterleaveB  uint8
	AlbumIdx     uint16
	Name         string
	OwnerGroup   uint16
	OwnerUser    uint16
	Attributes   FileAttributes
	Number       uint8

	// FullName is ParentFullName + "/" + Name ("/" + Name for a file in
	// the root directory), precomputed at parse time from the owning
	// Directory's own precomputed FullName, so no walk up the directory
	// tree happens per access.
	FullName string

	// IsDir reports whether this record's FirstLBN matches a known
	// directory LBN (computed from the Path Table by the caller that
	// parses directories, and passed in at parse time).
	IsDir bool

	image       *Image
	blockOffset int64

	records []*RecordInfo
}

// parseFileRecord decodes one directory file record (the bytes from
// record_size up to, but not including, the next record) per the
// Green Book layout, and resolves its FullName against the owning
// directory's own FullName.
func parseFileRecord(data []byte, img *Image, blockOffset int64, parentFullName string, dirLBNs map[uint32]bool) (*File, error) {
	if len(data) < 42 {
		return nil, fmt.Errorf("directory file record too short (%d bytes): %w", len(data), ErrCorrupt)
	}
	earSize := data[1]
	if earSize != 0 {
		return nil, fmt.Errorf("directory file record has non-zero ear_size %d: %w", earSize, ErrCorrupt)
	}

	firstLBN := beUint32(data[6:10])
	size := beUint32(data[14:18])

	year := 1900 + int(data[18])
	month, day := int(data[19]), int(data[20])
	hour, minute, second := int(data[21]), int(data[22]), int(data[23])
	creation := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	flags := FileFlags(data[25])
	interleaveA := data[26]
	interleaveB := data[27]
	albumIdx := beUint16(data[30:32])

	nameSize := int(data[32])
	if 33+nameSize > len(data) {
		return nil, fmt.Errorf("directory file record name overruns record: %w", ErrCorrupt)
	}
	name := cdibinary.CleanString(data[33 : 33+nameSize])
	nPrime := nameSize
	if nPrime%2 == 1 {
		nPrime++
	}

	tailStart := 33 + nPrime
	if tailStart+9 > len(data) {
		return nil, fmt.Errorf("directory file record tail overruns record: %w", ErrCorrupt)
	}
	ownerGroup := beUint16(data[tailStart : tailStart+2])
	ownerUser := beUint16(data[tailStart+2 : tailStart+4])
	attributes := FileAttributes(beUint16(data[tailStart+4 : tailStart+6]))
	number := data[tailStart+8]

	fullName := "/" + name
	if parentFullName != "/" {
		fullName = parentFullName + "/" + name
	}

	return &File{
		RecordSize:   data[0],
		EARSize:      earSize,
		FirstLBN:     firstLBN,
		Size:         size,
		CreationDate: creation,
		Flags:        flags,
		InterleaveA:  interleaveA,
		InterleaveB:  interleaveB,
		AlbumIdx:     albumIdx,
		Name:         name,
		OwnerGroup:   ownerGroup,
		OwnerUser:    ownerUser,
		Attributes:   attributes,
		Number:       number,
		FullName:     fullName,
		IsDir:        dirLBNs[firstLBN],
		image:        img,
		blockOffset:  blockOffset,
	}, nil
}

// ChannelInfo counts how many sectors of each submode were seen on one
// channel within one record.
type ChannelInfo struct {
	Audio int
	Video int
	Data  int
	Empty int
}

// RecordInfo is one logical record of a file: the sector index it
// starts at, and a per-channel sector-kind breakdown.
type RecordInfo struct {
	StartIndex int64
	Channels   map[uint8]*ChannelInfo
}

// Blocks iterates the sectors belonging to this file, restricted to the
// given record index and/or channel number when non-nil. A nil record
// means "every record"; a nil channel means "every channel".
//
// This mirrors the file-number/record/channel matching a CDFM play call
// performs, but walks the file's own sector range directly rather than
// a whole-image scan, which is what makes random access into a single
// file's records practical without re-scanning the image.
func (f *File) Blocks(record *int, channel *uint8) iter.Seq[*Sector] {
	return func(yield func(*Sector) bool) {
		var idx int64
		curRecord := 0

		if record == nil {
			idx = f.blockOffset + int64(f.FirstLBN)
		} else {
			recs, err := f.Records()
			if err != nil || *record < 0 || *record >= len(recs) {
				return
			}
			idx = recs[*record].StartIndex
			curRecord = *record
		}

		for {
			sec, err := f.image.Sector(idx)
			if err != nil {
				return
			}
			sh := sec.Subheader()

			numMatch := f.Number == 0 || sh.FileNumber == f.Number
			recMatch := record == nil || curRecord == *record
			chaMatch := channel == nil || sh.ChannelNumber == *channel

			if numMatch && recMatch && chaMatch {
				if !yield(sec) {
					return
				}
			}

			if sh.EOF() {
				return
			}
			if sh.EOR() {
				if record != nil && curRecord == *record {
					return
				}
				curRecord++
			}
			idx++
		}
	}
}

// SectorsOf iterates every sector belonging to this file, across all
// records and channels, in strictly increasing sector index.
func (f *File) SectorsOf() iter.Seq[*Sector] {
	return f.Blocks(nil, nil)
}

// Records computes (and caches) the record/channel breakdown for this
// file by scanning SectorsOf() once. Safe to call repeatedly; the scan
// only happens on first use.
func (f *File) Records() ([]*RecordInfo, error) {
	if f.records != nil {
		return f.records, nil
	}

	var records []*RecordInfo
	var cur *RecordInfo

	for sec := range f.SectorsOf() {
		sh := sec.Subheader()
		if cur == nil {
			cur = &RecordInfo{StartIndex: sec.Index(), Channels: make(map[uint8]*ChannelInfo)}
		}
		ch, ok := cur.Channels[sh.ChannelNumber]
		if !ok {
			ch = &ChannelInfo{}
			cur.Channels[sh.ChannelNumber] = ch
		}
		switch {
		case sh.Audio():
			ch.Audio++
		case sh.Video():
			ch.Video++
		case sh.Data():
			ch.Data++
		default:
			ch.Empty++
		}

		if sh.EOR() || sh.EOF() {
			records = append(records, cur)
			cur = nil
		}
	}

	f.records = records
	return records, nil
}

// Open returns a FileStream reading this file's data payload, filtered
// to the given record and/or channel exactly as Blocks would be. A
// non-nil record or channel puts the stream in real-time mode (EOF is
// driven by exhausting the filtered sector sequence rather than by
// file size).
func (f *File) Open(record *int, channel *uint8) (*FileStream, error) {
	return newFileStream(f, record, channel)
}
