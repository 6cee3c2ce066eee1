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

// Package cdi parses CD-I (Green Book) disc images: the physical sector
// grid, the Disc Label / Path Table / Directory filesystem, the CDFM
// playback primitive, and the file stream built on top of it.
package cdi

import "errors"

// Sentinel errors shared by every layer of the disc image reader.
// Callers should compare with errors.Is; lower layers wrap these with
// fmt.Errorf("...: %w", ...) to attach sector/offset context.
var (
	// ErrInvalidImage indicates sub-header redundancy mismatch in the
	// very first sector, or a corrupt CD sync pattern.
	ErrInvalidImage = errors.New("cdi: invalid image")

	// ErrMissingDiscLabel indicates the Disc Label scan reached EOF
	// without ever seeing a data sector.
	ErrMissingDiscLabel = errors.New("cdi: missing disc label")

	// ErrMissingTerminator indicates the Disc Label scan reached EOF
	// after seeing Standard labels but before seeing a Terminator.
	ErrMissingTerminator = errors.New("cdi: missing disc label terminator")

	// ErrUnsupportedDiscLabel indicates a label type other than
	// Standard, Coded, or Terminator, or a Coded (type 2) label.
	ErrUnsupportedDiscLabel = errors.New("cdi: unsupported disc label type")

	// ErrEOF indicates a sector index beyond the end of the image.
	ErrEOF = errors.New("cdi: sector index beyond end of image")

	// ErrSeekPastEnd indicates a CDFM seek past the source's last block.
	ErrSeekPastEnd = errors.New("cdi: seek past end")

	// ErrTruncatedImage indicates a codec needed more bytes than the
	// underlying stream could yield.
	ErrTruncatedImage = errors.New("cdi: truncated image")

	// ErrInvalidCoding indicates a reserved sample_rate, sample_depth,
	// or filter value in an ADPCM coding byte.
	ErrInvalidCoding = errors.New("cdi: invalid coding")

	// ErrCorrupt indicates ADPCM sound-group redundancy mismatch,
	// premature run-length end, or a DPCM overrun.
	ErrCorrupt = errors.New("cdi: corrupt data")
)
