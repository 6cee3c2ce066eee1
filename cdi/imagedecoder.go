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

// ImageDecoder is the shared harness the palette-based video codecs
// (CLUT4/7/8, RL3/7) read through: it flattens a sector sequence into a
// byte stream and, for a "packed" image, leaves the cursor wherever
// decoding stopped so the next image packed into the same sector can
// pick up immediately after it; for a non-packed image it always
// advances to the start of the next sector once any bytes of the
// current one have been consumed.
type ImageDecoder struct {
	next func() (*Sector, bool)
	stop func()

	curBlock *Sector
	blockPos int
	eof      bool

	packed bool
}

// NewImageDecoder returns a decoder reading from blocks.
func NewImageDecoder(blocks iter.Seq[*Sector], packed bool) *ImageDecoder {
	d := &ImageDecoder{packed: packed}
	d.next, d.stop = iter.Pull(blocks)
	d.advance()
	return d
}

func (d *ImageDecoder) advance() {
	cur, ok := d.next()
	if !ok {
		d.eof = true
		return
	}
	d.curBlock = cur
	d.blockPos = 0
	d.eof = false
}

// Close releases the underlying sector iterator.
func (d *ImageDecoder) Close() {
	if d.stop != nil {
		d.stop()
	}
}

// Read reads exactly n bytes, failing with ErrTruncatedImage if the
// sector sequence is exhausted first.
func (d *ImageDecoder) Read(n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	for n > 0 {
		if d.eof {
			return nil, fmt.Errorf("image decoder needs %d more bytes: %w", n, ErrTruncatedImage)
		}
		left := d.curBlock.DataSize() - d.blockPos
		if left <= n {
			data, err := d.curBlock.Data(d.blockPos, d.curBlock.DataSize())
			if err != nil {
				return nil, err
			}
			buf = append(buf, data...)
			n -= left
			d.advance()
			continue
		}
		data, err := d.curBlock.Data(d.blockPos, d.blockPos+n)
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)
		d.blockPos += n
		n = 0
	}
	return buf, nil
}

// Finish advances to the start of the next sector if decoding left the
// cursor mid-sector and the image is not packed. Packed images leave
// the cursor exactly where decoding stopped.
func (d *ImageDecoder) Finish() {
	if !d.packed && d.blockPos > 0 {
		d.advance()
	}
}
