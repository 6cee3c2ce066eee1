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
)

// cdfmSource is the sealed set of things a CDFM can demultiplex: either
// one file's own sector sequence, or a whole image's sector sequence
// (used to scan for real-time records that are not attached to any one
// file, e.g. background audio/video channels). Unexported so it can
// only ever be one of the two concrete types below — the Go analogue of
// the original's duck-typed file-or-image source.
type cdfmSource interface {
	sectors() iter.Seq[*Sector]
}

type fileSource struct{ f *File }

func (s fileSource) sectors() iter.Seq[*Sector] { return s.f.SectorsOf() }

type imageSource struct{ img *Image }

func (s imageSource) sectors() iter.Seq[*Sector] { return s.img.Sectors() }

// CDFM is the Compact Disc File Manager playback primitive: a seekable
// cursor over a source's sector sequence that Play demultiplexes by
// channel mask, counting logical records as it goes.
type CDFM struct {
	source cdfmSource
	next   func() (*Sector, bool)
	stop   func()
}

// NewFileDemuxer returns a CDFM positioned at the start of f's sectors.
func NewFileDemuxer(f *File) *CDFM {
	c := &CDFM{source: fileSource{f}}
	c.Reset()
	return c
}

// NewImageDemuxer returns a CDFM positioned at the start of the whole
// image's sectors.
func NewImageDemuxer(img *Image) *CDFM {
	c := &CDFM{source: imageSource{img}}
	c.Reset()
	return c
}

// Reset rewinds the CDFM to the first sector of its source.
func (c *CDFM) Reset() {
	if c.stop != nil {
		c.stop()
	}
	c.next, c.stop = iter.Pull(c.source.sectors())
}

// Seek rewinds and then advances position/2048 sectors ahead (one
// sector per 2048-byte logical block), failing with ErrSeekPastEnd if
// the source is exhausted first.
func (c *CDFM) Seek(position int64) error {
	c.Reset()
	n := position / 2048
	for i := int64(0); i < n; i++ {
		if _, ok := c.next(); !ok {
			return fmt.Errorf("cdfm seek to %d: %w", position, ErrSeekPastEnd)
		}
	}
	return nil
}

// Play yields sectors from the current cursor position whose channel
// number is set in channelMask (bit N selects channel N), advancing the
// cursor as it goes. numRecords bounds how many complete logical
// records (sequences ending in an EOR sector) are consumed before
// stopping; a negative numRecords means "play until the source is
// exhausted".
func (c *CDFM) Play(channelMask uint32, numRecords int) iter.Seq[*Sector] {
	return func(yield func(*Sector) bool) {
		if numRecords == 0 {
			return
		}
		for {
			sec, ok := c.next()
			if !ok {
				return
			}
			sh := sec.Subheader()
			if sh.ChannelNumber < 32 && (uint32(1)<<sh.ChannelNumber)&channelMask == 0 {
				continue
			}
			if !yield(sec) {
				return
			}
			if sh.EOR() {
				if numRecords > 0 {
					numRecords--
					if numRecords == 0 {
						return
					}
				}
			}
		}
	}
}
