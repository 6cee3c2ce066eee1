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

// RGB is one CLUT palette entry.
type RGB struct{ R, G, B byte }

// PaletteImage is a decoded CLUT4/7/8 image: a flat, row-major array of
// palette indices plus the palette it was decoded against. Composing
// indices with the palette into actual pixels is left to the caller
// (a renderer or container writer), not this package's concern.
type PaletteImage struct {
	Width, Height int
	Palette       []RGB
	Indices       []byte
}

// DecodeCLUT8 reads a width*height raw-byte-per-pixel CLUT8 image.
func DecodeCLUT8(dec *ImageDecoder, width, height int, palette []RGB) (*PaletteImage, error) {
	if len(palette) != 256 {
		return nil, fmt.Errorf("clut8 palette has %d entries, want 256: %w", len(palette), ErrCorrupt)
	}
	data, err := dec.Read(width * height)
	if err != nil {
		return nil, fmt.Errorf("decode clut8 image: %w", err)
	}
	dec.Finish()
	return &PaletteImage{Width: width, Height: height, Palette: palette, Indices: data}, nil
}

// DecodeCLUT7 reads a width*height raw-byte-per-pixel CLUT7 image; the
// top bit of every pixel byte is reserved and masked off.
func DecodeCLUT7(dec *ImageDecoder, width, height int, palette []RGB) (*PaletteImage, error) {
	if len(palette) != 128 {
		return nil, fmt.Errorf("clut7 palette has %d entries, want 128: %w", len(palette), ErrCorrupt)
	}
	data, err := dec.Read(width * height)
	if err != nil {
		return nil, fmt.Errorf("decode clut7 image: %w", err)
	}
	indices := make([]byte, len(data))
	for i, b := range data {
		indices[i] = b & 0x7F
	}
	dec.Finish()
	return &PaletteImage{Width: width, Height: height, Palette: palette, Indices: indices}, nil
}

// DecodeCLUT4 reads a width*height/2-byte, two-pixels-per-byte CLUT4
// image (high nibble first).
func DecodeCLUT4(dec *ImageDecoder, width, height int, palette []RGB) (*PaletteImage, error) {
	if len(palette) != 16 {
		return nil, fmt.Errorf("clut4 palette has %d entries, want 16: %w", len(palette), ErrCorrupt)
	}
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("clut4 image %dx%d: dimensions must be even: %w", width, height, ErrCorrupt)
	}
	data, err := dec.Read(width * height / 2)
	if err != nil {
		return nil, fmt.Errorf("decode clut4 image: %w", err)
	}
	indices := make([]byte, 0, width*height)
	for _, b := range data {
		indices = append(indices, (b&0xF0)>>4, b&0x0F)
	}
	dec.Finish()
	return &PaletteImage{Width: width, Height: height, Palette: palette, Indices: indices}, nil
}

// runLengthDecode implements the RL3/RL7 run-length scheme shared by
// DecodeRL3 and DecodeRL7: a byte whose top bit is clear packs one or
// more pixel indices directly; a byte whose top bit is set is followed
// by a count byte, 0 meaning "rest of the current line" and any other
// value a literal repeat count. A count byte of 1 is reserved.
func runLengthDecode(dec *ImageDecoder, width, height int, decodeByte func(byte) []byte) ([]byte, error) {
	total := width * height
	out := make([]byte, 0, total)
	x := 0

	for len(out) < total {
		bb, err := dec.Read(1)
		if err != nil {
			return nil, fmt.Errorf("run-length decode: %w", err)
		}
		b := bb[0]
		entries := decodeByte(b)

		if b&0x80 == 0 {
			out = append(out, entries...)
			x = (x + len(entries)) % width
			continue
		}

		cb, err := dec.Read(1)
		if err != nil {
			return nil, fmt.Errorf("run-length decode count: %w", err)
		}
		c := cb[0]
		if c == 1 {
			return nil, fmt.Errorf("run-length decode: reserved count byte: %w", ErrCorrupt)
		}

		count := int(c)
		if c == 0 {
			count = (width - x) / len(entries)
		}
		for i := 0; i < count; i++ {
			out = append(out, entries...)
		}
		x = (x + count*len(entries)) % width
	}

	if x != 0 {
		return nil, fmt.Errorf("run-length decode: premature end of line: %w", ErrCorrupt)
	}
	dec.Finish()
	return out, nil
}

// DecodeRL7 decodes a run-length image over a 128-entry palette, one
// index per run-length symbol.
func DecodeRL7(dec *ImageDecoder, width, height int, palette []RGB) (*PaletteImage, error) {
	if len(palette) != 128 {
		return nil, fmt.Errorf("rl7 palette has %d entries, want 128: %w", len(palette), ErrCorrupt)
	}
	indices, err := runLengthDecode(dec, width, height, func(b byte) []byte {
		return []byte{b & 0x7F}
	})
	if err != nil {
		return nil, fmt.Errorf("decode rl7 image: %w", err)
	}
	return &PaletteImage{Width: width, Height: height, Palette: palette, Indices: indices}, nil
}

// DecodeRL3 decodes a run-length image over an 8-entry palette, two
// indices (high nibble's low 3 bits, then low nibble's low 3 bits) per
// run-length symbol. Both dimensions must be even.
func DecodeRL3(dec *ImageDecoder, width, height int, palette []RGB) (*PaletteImage, error) {
	if len(palette) != 8 {
		return nil, fmt.Errorf("rl3 palette has %d entries, want 8: %w", len(palette), ErrCorrupt)
	}
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("rl3 image %dx%d: dimensions must be even: %w", width, height, ErrCorrupt)
	}
	indices, err := runLengthDecode(dec, width, height, func(b byte) []byte {
		return []byte{(b >> 4) & 0x07, b & 0x07}
	})
	if err != nil {
		return nil, fmt.Errorf("decode rl3 image: %w", err)
	}
	return &PaletteImage{Width: width, Height: height, Palette: palette, Indices: indices}, nil
}
