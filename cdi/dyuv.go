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

// dyuvQuantTable maps a 4-bit DPCM delta directly to its signed step,
// already folded into the [0,255] wraparound arithmetic DYUV uses.
var dyuvQuantTable = [16]int{
	0, 1, 4, 9, 16, 27, 44, 79, 128, 177, 212, 229, 240, 247, 252, 255,
}

func dyuvStep(prev byte, delta byte) byte {
	return byte((int(prev) + dyuvQuantTable[delta&0x0F]) % 256)
}

// DYUVDecoder decodes a DYUV-encoded image out of a sector sequence.
// DYUV packs two luma samples and one each of delta-U and delta-V into
// every two bytes; chroma is recovered at half the image's horizontal
// resolution and linearly upsampled back to full width.
type DYUVDecoder struct {
	next func() (*Sector, bool)
	stop func()

	curBlock *Sector
	blockPos int
	eof      bool

	// unread holds bytes peeked past while skipping leading filler,
	// to be handed back to the first real readByte calls of the line.
	unread []byte

	width, height int
}

// NewDYUVDecoder returns a decoder that pulls its encoded bytes from
// blocks, an even width and height apart.
func NewDYUVDecoder(blocks iter.Seq[*Sector], width, height int) (*DYUVDecoder, error) {
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("dyuv image %dx%d: dimensions must be even: %w", width, height, ErrCorrupt)
	}
	next, stop := iter.Pull(blocks)
	d := &DYUVDecoder{next: next, stop: stop, width: width, height: height}
	if cur, ok := next(); ok {
		d.curBlock = cur
	} else {
		d.eof = true
		stop()
	}
	return d, nil
}

// Close releases the underlying sector iterator.
func (d *DYUVDecoder) Close() {
	if d.stop != nil {
		d.stop()
	}
}

func (d *DYUVDecoder) readByte() (byte, error) {
	if len(d.unread) > 0 {
		b := d.unread[0]
		d.unread = d.unread[1:]
		return b, nil
	}
	if d.eof {
		return 0, fmt.Errorf("dyuv read: %w", ErrTruncatedImage)
	}
	b, err := d.curBlock.Data(d.blockPos, d.blockPos+1)
	if err != nil {
		return 0, err
	}
	d.blockPos++
	if d.blockPos >= d.curBlock.DataSize() {
		if cur, ok := d.next(); ok {
			d.curBlock = cur
			d.blockPos = 0
		} else {
			d.eof = true
			d.stop()
		}
	}
	return b[0], nil
}

// DecodeImage decodes one full image. initial supplies the seed
// (Y,U,V) triple for scanline y, before any delta is applied, matching
// the Green Book's per-line DC restart. Every image starts in a fresh
// sector: a cursor left mid-sector by the previous image skips ahead
// first. Leading all-zero byte pairs before the first scanline (filler
// inserted to pad a sector boundary) are skipped too.
func (d *DYUVDecoder) DecodeImage(initial func(y int) (y0, u0, v0 byte)) (Y, U, V [][]byte, err error) {
	if d.blockPos != 0 && !d.eof {
		if cur, ok := d.next(); ok {
			d.curBlock = cur
			d.blockPos = 0
		} else {
			d.eof = true
			d.stop()
			return nil, nil, nil, fmt.Errorf("dyuv: no more image sectors: %w", ErrTruncatedImage)
		}
	}

	for {
		b0, err := d.readByte()
		if err != nil {
			return nil, nil, nil, err
		}
		b1, err := d.readByte()
		if err != nil {
			return nil, nil, nil, err
		}
		if b0 != 0 || b1 != 0 {
			d.unread = append(d.unread, b0, b1)
			break
		}
	}

	Y = make([][]byte, d.height)
	U = make([][]byte, d.height)
	V = make([][]byte, d.height)

	for y := 0; y < d.height; y++ {
		yLine := make([]byte, d.width)
		uHalf := make([]byte, d.width/2)
		vHalf := make([]byte, d.width/2)

		y0, u0, v0 := initial(y)
		yPrev, uPrev, vPrev := y0, u0, v0

		for x := 0; x < d.width/2; x++ {
			b0, err := d.readByte()
			if err != nil {
				return nil, nil, nil, err
			}
			b1, err := d.readByte()
			if err != nil {
				return nil, nil, nil, err
			}

			dU, dY0 := (b0&0xF0)>>4, b0&0x0F
			dV, dY1 := (b1&0xF0)>>4, b1&0x0F

			yPrev = dyuvStep(yPrev, dY0)
			yLine[2*x] = yPrev
			uPrev = dyuvStep(uPrev, dU)
			uHalf[x] = uPrev
			yPrev = dyuvStep(yPrev, dY1)
			yLine[2*x+1] = yPrev
			vPrev = dyuvStep(vPrev, dV)
			vHalf[x] = vPrev
		}

		Y[y] = yLine
		U[y] = upsampleChroma(uHalf, d.width)
		V[y] = upsampleChroma(vHalf, d.width)
	}

	return Y, U, V, nil
}

// upsampleChroma expands a half-width chroma line back to full width:
// even columns take the decoded sample directly, odd columns take the
// average of the two neighboring decoded samples (the last column
// repeats the final decoded sample, since it has no right neighbor).
func upsampleChroma(half []byte, width int) []byte {
	full := make([]byte, width)
	n := len(half)
	for x := 0; x < n; x++ {
		full[2*x] = half[x]
		if x+1 < n {
			full[2*x+1] = byte((int(half[x]) + int(half[x+1])) / 2)
		} else if 2*x+1 < width {
			full[2*x+1] = half[x]
		}
	}
	return full
}
