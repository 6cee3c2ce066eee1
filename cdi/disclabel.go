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
	"time"

	cdibinary "github.com/ZaparooProject/go-cdi/cdi/internal/binary"
)

// firstDiscLabelIndex is the LBN the Green Book assigns to the first
// Disc Label sector: the label scan anchors the LBN-to-sector-index
// conversion by subtracting it from the first label's actual index.
const firstDiscLabelIndex = 16

// Disc Label type byte values.
const (
	discLabelTypeStandard   = 1
	discLabelTypeCoded      = 2
	discLabelTypeTerminator = 255
)

// StandardDiscLabel is a Type=1 Disc Label: the volume descriptor that
// anchors the Path Table and carries volume/publisher metadata.
type StandardDiscLabel struct {
	StandardID    string
	Version       uint8
	VolumeFlags   uint8
	SystemID      string
	VolumeID      string
	VolumeSize    uint32
	Charset       string
	AlbumSize     uint16
	AlbumIdx      uint16
	BlockSize     uint16
	PathTableSize uint32
	PathTableAddr uint32
	AlbumID       string
	PublisherID   string
	DataPreparer  string
	AppID         string
	CopyrightFile string
	AbstractFile  string
	BiblioFile    string
	CreatedDate   *time.Time
	ModifiedDate  *time.Time
	ExpiresDate   *time.Time
	EffectiveDate *time.Time
	FilesystemVer uint8
}

func parseStandardDiscLabel(data []byte) (*StandardDiscLabel, error) {
	if len(data) < 882 {
		return nil, fmt.Errorf("standard disc label payload too short (%d bytes): %w", len(data), ErrCorrupt)
	}
	l := &StandardDiscLabel{
		StandardID:    cdibinary.CleanString(data[1:6]),
		Version:       data[6],
		VolumeFlags:   data[7],
		SystemID:      cdibinary.CleanString(data[8:40]),
		VolumeID:      cdibinary.CleanString(data[40:72]),
		VolumeSize:    beUint32(data[84:88]),
		Charset:       cdibinary.CleanString(data[88:120]),
		AlbumSize:     beUint16(data[122:124]),
		AlbumIdx:      beUint16(data[126:128]),
		BlockSize:     beUint16(data[130:132]),
		PathTableSize: beUint32(data[136:140]),
		PathTableAddr: beUint32(data[148:152]),
		AlbumID:       cdibinary.CleanString(data[190:318]),
		PublisherID:   cdibinary.CleanString(data[318:446]),
		DataPreparer:  cdibinary.CleanString(data[446:574]),
		AppID:         cdibinary.CleanString(data[574:702]),
		CopyrightFile: cdibinary.CleanString(data[702:734]),
		AbstractFile:  cdibinary.CleanString(data[739:771]),
		BiblioFile:    cdibinary.CleanString(data[776:808]),
		FilesystemVer: data[881],
	}
	l.CreatedDate = parseDiscLabelDate(data[813:829])
	l.ModifiedDate = parseDiscLabelDate(data[830:846])
	l.ExpiresDate = parseDiscLabelDate(data[847:863])
	l.EffectiveDate = parseDiscLabelDate(data[864:880])
	return l, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func beUint16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// parseDiscLabelDate parses a 16-character YYYYMMDDHHMMSScc field. An
// all-'0' field, or one whose components do not form a valid calendar
// date/time, is demoted to nil rather than raised.
func parseDiscLabelDate(field []byte) *time.Time {
	if len(field) != 16 {
		return nil
	}
	allZero := true
	for _, c := range field {
		if c != '0' {
			allZero = false
			break
		}
	}
	if allZero {
		return nil
	}

	atoi := func(s string) (int, bool) {
		n := 0
		for _, c := range s {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		return n, true
	}

	year, ok1 := atoi(string(field[0:4]))
	month, ok2 := atoi(string(field[4:6]))
	day, ok3 := atoi(string(field[6:8]))
	hour, ok4 := atoi(string(field[8:10]))
	minute, ok5 := atoi(string(field[10:12]))
	second, ok6 := atoi(string(field[12:14]))
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > daysInMonth(year, month) ||
		hour > 23 || minute > 59 || second > 59 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return &t
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// scanDiscLabels walks sectors from index 0 looking for Disc Label data
// sectors; the system area preceding the label carries no data submode,
// so the first data sector found is the first label. It accumulates
// every Standard label, in order, and stops at the first Terminator.
// blockOffset is fixed at the first label's index minus
// firstDiscLabelIndex, the value needed to convert any on-disc LBN to a
// sector index (negative for images trimmed to start at the label).
//
// Even when it returns an error (ErrMissingDiscLabel or
// ErrMissingTerminator), the labels and blockOffset already collected
// are returned alongside it, so a caller willing to tolerate a missing
// terminator can still make use of a partial scan.
func scanDiscLabels(img *Image) (labels []*StandardDiscLabel, blockOffset int64, err error) {
	haveBlockOffset := false

	for idx := int64(0); ; idx++ {
		s, serr := img.Sector(idx)
		if serr != nil {
			if len(labels) == 0 {
				return nil, 0, ErrMissingDiscLabel
			}
			return labels, blockOffset, ErrMissingTerminator
		}
		sh := s.Subheader()
		if !sh.Data() {
			continue
		}

		if !haveBlockOffset {
			blockOffset = idx - firstDiscLabelIndex
			haveBlockOffset = true
		}

		typeByte, terr := s.Data(0, 1)
		if terr != nil {
			return labels, blockOffset, fmt.Errorf("read disc label type: %w", terr)
		}

		switch typeByte[0] {
		case discLabelTypeStandard:
			payload, perr := s.Data(0, s.DataSize())
			if perr != nil {
				return labels, blockOffset, fmt.Errorf("read standard disc label: %w", perr)
			}
			label, perr := parseStandardDiscLabel(payload)
			if perr != nil {
				return labels, blockOffset, perr
			}
			labels = append(labels, label)
		case discLabelTypeTerminator:
			return labels, blockOffset, nil
		case discLabelTypeCoded:
			return labels, blockOffset, fmt.Errorf("coded disc label: %w", ErrUnsupportedDiscLabel)
		default:
			return labels, blockOffset, fmt.Errorf("disc label type %d: %w", typeByte[0], ErrUnsupportedDiscLabel)
		}
	}
}
