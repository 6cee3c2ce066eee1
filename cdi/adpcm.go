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
	"math"
)

// soundGroupSize is the byte size of one of the 18 sound groups packed
// into a Form 2 audio sector's 2324-byte payload.
const soundGroupSize = 128

// adpcmFilter holds the two IIR coefficients selected by a sound unit's
// 2-bit filter value F.
type adpcmFilter struct{ k0, k1 float64 }

var adpcmFilters = [4]adpcmFilter{
	{0, 0},
	{0.9375, 0},
	{1.796875, -0.8125},
	{1.53125, -0.859375},
}

// adpcmDecoder is a single ADPCM delay-line decoder: it owns the two
// previous output samples and the current gain/filter, and produces one
// output sample per input nibble or byte via Propagate.
type adpcmDecoder struct {
	d1, d2 float64
	gain   float64
	filter adpcmFilter
}

// setParams selects this decoder's range (as a gain exponent g) and
// filter (one of four fixed coefficient pairs) for the next sound unit.
func (d *adpcmDecoder) setParams(g, f int) error {
	if f < 0 || f > 3 {
		return fmt.Errorf("adpcm filter index %d: %w", f, ErrInvalidCoding)
	}
	d.gain = math.Pow(2, float64(g))
	d.filter = adpcmFilters[f]
	return nil
}

// propagate decodes one sample and updates the delay line.
func (d *adpcmDecoder) propagate(sample int32) int16 {
	out := float64(sample)*d.gain + d.d1*d.filter.k0 + d.d2*d.filter.k1
	clamped := int32(out)
	switch {
	case clamped > 32767:
		clamped = 32767
	case clamped < -32768:
		clamped = -32768
	}
	d.d2 = d.d1
	d.d1 = float64(clamped)
	return int16(clamped)
}

// AudioDecoder decodes a sequence of Form 2 audio sectors, all sharing
// one coding (sample rate, sample depth, channel layout), into PCM
// samples. State (the delay lines of its decoders) persists across
// sectors, matching the continuous DPCM stream the Green Book encodes.
type AudioDecoder struct {
	initialized bool
	stereo      bool
	depth8      bool

	mono  *adpcmDecoder
	left  *adpcmDecoder
	right *adpcmDecoder
}

// NewAudioDecoder returns an AudioDecoder whose coding is fixed by the
// first sector passed to DecodeSector.
func NewAudioDecoder() *AudioDecoder {
	return &AudioDecoder{mono: &adpcmDecoder{}, left: &adpcmDecoder{}, right: &adpcmDecoder{}}
}

func (a *AudioDecoder) init(c AudioCoding) error {
	if c.Layout() > 1 {
		return fmt.Errorf("audio coding channel layout %d: %w", c.Layout(), ErrInvalidCoding)
	}
	if c.SampleRate() > 1 {
		return fmt.Errorf("audio coding sample rate %d: %w", c.SampleRate(), ErrInvalidCoding)
	}
	if c.SampleDepth() > 1 {
		return fmt.Errorf("audio coding sample depth %d: %w", c.SampleDepth(), ErrInvalidCoding)
	}
	a.stereo = c.Stereo()
	a.depth8 = c.SampleDepth() == SampleDepth8Bit
	a.initialized = true
	return nil
}

// DecodeSector decodes all 18 sound groups of one audio sector into
// interleaved PCM16 samples (stereo output is L,R,L,R,...).
func (a *AudioDecoder) DecodeSector(sec *Sector) ([]int16, error) {
	sh := sec.Subheader()
	if !sh.Audio() {
		return nil, fmt.Errorf("decode audio sector %d: sector is not an audio sector: %w", sec.Index(), ErrInvalidCoding)
	}
	c := sh.AudioCoding()
	if !a.initialized {
		if err := a.init(c); err != nil {
			return nil, err
		}
	} else if a.stereo != c.Stereo() || a.depth8 != (c.SampleDepth() == SampleDepth8Bit) {
		return nil, fmt.Errorf("decode audio sector %d: coding changed mid-stream: %w", sec.Index(), ErrInvalidCoding)
	}

	var out []int16
	for g := 0; g < 18; g++ {
		group, err := sec.Data(g*soundGroupSize, (g+1)*soundGroupSize)
		if err != nil {
			return nil, fmt.Errorf("decode audio sector %d group %d: %w", sec.Index(), g, err)
		}
		samples, err := a.decodeGroup(group)
		if err != nil {
			return nil, fmt.Errorf("decode audio sector %d group %d: %w", sec.Index(), g, err)
		}
		out = append(out, samples...)
	}
	return out, nil
}

func extractParams(p byte) (r, f int) {
	return int(p & 0x0F), int((p & 0xF0) >> 4)
}

func signExtendNibble(v byte) int32 {
	if v&0x08 != 0 {
		return int32(v) - 16
	}
	return int32(v)
}

func (a *AudioDecoder) decodeGroup(group []byte) ([]int16, error) {
	if a.depth8 {
		return a.decodeGroup8(group)
	}
	return a.decodeGroup4(group)
}

// decodeGroup8 decodes Level A (8-bit) sound groups: 4 parameter bytes
// at offsets 0-3 (redundantly repeated at 4-7, 8-11, 12-15), 4 units of
// 28 unsigned-byte samples each, always through a single decoder.
func (a *AudioDecoder) decodeGroup8(group []byte) ([]int16, error) {
	for i := 0; i < 4; i++ {
		for j := 1; j <= 3; j++ {
			if group[i] != group[i+4*j] {
				return nil, fmt.Errorf("sound group parameter redundancy mismatch at unit %d: %w", i, ErrCorrupt)
			}
		}
	}

	out := make([]int16, 0, 4*28)
	for unit := 0; unit < 4; unit++ {
		r, f := extractParams(group[unit])
		if err := a.mono.setParams(8-r, f); err != nil {
			return nil, err
		}
		for sample := 0; sample < 28; sample++ {
			d := group[16+unit+4*sample]
			out = append(out, a.mono.propagate(int32(d)))
		}
	}
	return out, nil
}

// decodeGroup4 decodes Level B/C (4-bit) sound groups: 8 parameter
// bytes at offsets 4-11, with redundant copies at 0-3 and 12-15, and 8
// units of 28 nibble samples each. Stereo routes each sample byte's two
// nibbles to independent left/right decoders (even units left, odd
// units right); mono alternates the nibbles through one decoder.
func (a *AudioDecoder) decodeGroup4(group []byte) ([]int16, error) {
	for i := 0; i < 4; i++ {
		if group[i] != group[i+4] {
			return nil, fmt.Errorf("sound group parameter redundancy mismatch at %d: %w", i, ErrCorrupt)
		}
		if group[i+8] != group[i+12] {
			return nil, fmt.Errorf("sound group parameter redundancy mismatch at %d: %w", i+8, ErrCorrupt)
		}
	}

	if a.stereo {
		out := make([]int16, 0, 4*28*2)
		for unit := 0; unit < 4; unit++ {
			r1, f1 := extractParams(group[4+2*unit])
			r2, f2 := extractParams(group[4+2*unit+1])
			if err := a.left.setParams(12-r1, f1); err != nil {
				return nil, err
			}
			if err := a.right.setParams(12-r2, f2); err != nil {
				return nil, err
			}
			for sample := 0; sample < 28; sample++ {
				b := group[16+unit+4*sample]
				d1 := signExtendNibble(b & 0x0F)
				d2 := signExtendNibble((b & 0xF0) >> 4)
				out = append(out, a.left.propagate(d1), a.right.propagate(d2))
			}
		}
		return out, nil
	}

	out := make([]int16, 0, 8*28)
	for unit := 0; unit < 8; unit++ {
		r, f := extractParams(group[4+unit])
		if err := a.mono.setParams(12-r, f); err != nil {
			return nil, err
		}
		for sample := 0; sample < 28; sample++ {
			b := group[16+unit/2+4*sample]
			var d int32
			if unit%2 == 0 {
				d = signExtendNibble(b & 0x0F)
			} else {
				d = signExtendNibble((b & 0xF0) >> 4)
			}
			out = append(out, a.mono.propagate(d))
		}
	}
	return out, nil
}
