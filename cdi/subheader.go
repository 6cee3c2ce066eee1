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

// Subheader is a sector's 8-byte (bytes 0-3, redundantly repeated at 4-7)
// per-sector metadata: which file and channel the sector belongs to, and
// how its payload is coded.
type Subheader struct {
	FileNumber    uint8
	ChannelNumber uint8
	SubmodeRaw    uint8
	CodingRaw     uint8
}

func smf(raw uint8, bit uint) bool {
	return raw&(1<<bit) != 0
}

// EOR is true for the last sector of a logical record. Mandatory only for
// real-time records.
func (s Subheader) EOR() bool { return smf(s.SubmodeRaw, 0) }

// Video is true for video sectors.
func (s Subheader) Video() bool { return smf(s.SubmodeRaw, 1) }

// Audio is true for audio sectors. Audio sectors can only be Form 2.
func (s Subheader) Audio() bool { return smf(s.SubmodeRaw, 2) }

// Data is true for data sectors. Data sectors can only be Form 1.
func (s Subheader) Data() bool { return smf(s.SubmodeRaw, 3) }

// Empty is true when the sector carries none of video, audio or data.
func (s Subheader) Empty() bool { return !(s.Video() || s.Audio() || s.Data()) }

// Trigger is true when the sector causes an interrupt on read, used to
// synchronize the application with real-time audio/video.
func (s Subheader) Trigger() bool { return smf(s.SubmodeRaw, 4) }

// Form2 is true for Form 2 sectors (more data, less error correction).
func (s Subheader) Form2() bool { return smf(s.SubmodeRaw, 5) }

// Form1 is true for Form 1 sectors (less data, more error correction).
func (s Subheader) Form1() bool { return !s.Form2() }

// Realtime is true when the sector must be processed without interrupting
// the CD-I system's real-time behavior.
func (s Subheader) Realtime() bool { return smf(s.SubmodeRaw, 6) }

// EOF is true for the last sector of a file.
func (s Subheader) EOF() bool { return smf(s.SubmodeRaw, 7) }

// DataSize returns the usable payload size implied by the Form bit: 2048
// for Form 1, 2324 for Form 2.
func (s Subheader) DataSize() int {
	if s.Form1() {
		return 2048
	}
	return 2324
}

func codingField(raw uint8, start, size uint) uint8 {
	return (raw >> start) & ((1 << size) - 1)
}

func codingFlag(raw uint8, bit uint) bool {
	return raw&(1<<bit) != 0
}

// AudioCoding interprets a sector's coding byte under the audio submode.
type AudioCoding struct{ Raw uint8 }

// Layout is the raw 2-bit channel layout field (0=mono, 1=stereo, 2-3
// reserved).
func (c AudioCoding) Layout() uint8 { return codingField(c.Raw, 0, 2) }

// Mono is true when the channel layout is mono.
func (c AudioCoding) Mono() bool { return c.Layout() == 0 }

// Stereo is true when the channel layout is stereo.
func (c AudioCoding) Stereo() bool { return c.Layout() == 1 }

// Sample rate constants for AudioCoding.SampleRate.
const (
	SampleRate37800 = 0 // 37.8 kHz
	SampleRate18900 = 1 // 18.9 kHz
)

// SampleRate is the raw 2-bit sample rate field.
func (c AudioCoding) SampleRate() uint8 { return codingField(c.Raw, 2, 2) }

// Sample depth constants for AudioCoding.SampleDepth.
const (
	SampleDepth4Bit = 0
	SampleDepth8Bit = 1
)

// SampleDepth is the raw 2-bit sample depth field.
func (c AudioCoding) SampleDepth() uint8 { return codingField(c.Raw, 4, 2) }

// Emphasis is true if a CD-DA pre-emphasis filter was applied on recording.
func (c AudioCoding) Emphasis() bool { return codingFlag(c.Raw, 6) }

// VideoCoding interprets a sector's coding byte under the video submode.
// Callers must check the Application Specific Coding Flag (bit 7 of the
// raw coding byte, exposed as Subheader.ApplicationSpecific) before relying
// on it: when set, the coding byte's meaning is undefined.
type VideoCoding struct{ Raw uint8 }

// Video encoding kind constants for VideoCoding.Encoding.
const (
	EncodingCLUT4       = 0
	EncodingCLUT7       = 1
	EncodingCLUT8       = 2
	EncodingRL3         = 3
	EncodingRL7         = 4
	EncodingDYUV        = 5
	EncodingRGB555Lower = 6
	EncodingRGB555Upper = 7
	EncodingQHY         = 8
	EncodingMPEG        = 15
)

// Encoding is how the image data is encoded (the low 4 bits).
func (c VideoCoding) Encoding() uint8 { return codingField(c.Raw, 0, 4) }

// Video resolution constants for VideoCoding.Resolution.
const (
	ResolutionNormal = 0
	ResolutionDouble = 1
	ResolutionHigh   = 3
)

// Resolution is the 2-bit resolution field.
func (c VideoCoding) Resolution() uint8 { return codingField(c.Raw, 4, 2) }

// OddLines indicates, when error concealment is used, whether this sector
// carries the odd lines of the image.
func (c VideoCoding) OddLines() bool { return codingFlag(c.Raw, 6) }

// EvenLines is the complement of OddLines.
func (c VideoCoding) EvenLines() bool { return !c.OddLines() }

// ApplicationSpecific reports whether bit 7 of the coding byte (the
// Application Specific Coding Flag) is set, meaning the rest of the coding
// byte has no defined CD-I meaning.
func (s Subheader) ApplicationSpecific() bool { return codingFlag(s.CodingRaw, 7) }

// AudioCoding interprets the subheader's coding byte as audio coding flags.
// Only meaningful when s.Audio() is true.
func (s Subheader) AudioCoding() AudioCoding { return AudioCoding{Raw: s.CodingRaw} }

// VideoCoding interprets the subheader's coding byte as video coding flags.
// Only meaningful when s.Video() is true and !s.ApplicationSpecific().
func (s Subheader) VideoCoding() VideoCoding { return VideoCoding{Raw: s.CodingRaw} }
