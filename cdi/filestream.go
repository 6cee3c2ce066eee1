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
	"io"
	"iter"
)

// FileStream is a byte-oriented reader over a File's data payload. In
// non-real-time mode (record == nil && channel == nil) it stops reading
// once it has delivered File.Size bytes, matching ordinary file
// semantics. In real-time mode (either filter set) there is no
// authoritative byte count, so EOF is instead driven by exhausting the
// filtered sector sequence.
type FileStream struct {
	file *File
	rt   bool

	next func() (*Sector, bool)
	stop func()

	curBlock    *Sector
	curBlockPos int
	filePos     int
	eof         bool
}

func newFileStream(f *File, record *int, channel *uint8) (*FileStream, error) {
	rt := record != nil || channel != nil
	next, stop := iter.Pull(f.Blocks(record, channel))

	fs := &FileStream{file: f, rt: rt, next: next, stop: stop}
	if cur, ok := next(); ok {
		fs.curBlock = cur
	} else {
		fs.eof = true
		stop()
	}
	return fs, nil
}

// EOF reports whether the stream has been fully consumed.
func (fs *FileStream) EOF() bool { return fs.eof }

// ReadN reads up to n bytes from the stream, or, if n is negative, every
// remaining byte. It returns fewer than the requested bytes only at
// EOF; io.Reader.Read wraps this to implement the standard interface.
func (fs *FileStream) ReadN(n int) ([]byte, error) {
	if fs.eof {
		return nil, nil
	}

	if !fs.rt {
		left := int(fs.file.Size) - fs.filePos
		if n < 0 || n > left {
			n = left
		}
	}

	var buf []byte
	for n < 0 || fs.curBlockPos+n >= fs.curBlock.DataSize() {
		data, err := fs.curBlock.Data(fs.curBlockPos, fs.curBlock.DataSize())
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)
		consumed := fs.curBlock.DataSize() - fs.curBlockPos
		fs.filePos += consumed
		if n >= 0 {
			n -= consumed
		}

		next, ok := fs.next()
		if !ok {
			fs.eof = true
			fs.stop()
			return buf, nil
		}
		fs.curBlock = next
		fs.curBlockPos = 0

		if !fs.rt && fs.filePos >= int(fs.file.Size) {
			fs.eof = true
			fs.stop()
			return buf, nil
		}
	}

	if n > 0 {
		data, err := fs.curBlock.Data(fs.curBlockPos, fs.curBlockPos+n)
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)
		fs.curBlockPos += n
		fs.filePos += n
	}

	if !fs.rt && fs.filePos >= int(fs.file.Size) {
		fs.eof = true
	}

	return buf, nil
}

// ReadBlock reads the remainder of the current sector only, advancing
// to the next sector but not consuming any of it.
func (fs *FileStream) ReadBlock() ([]byte, error) {
	if fs.eof {
		return nil, nil
	}
	return fs.ReadN(fs.curBlock.DataSize() - fs.curBlockPos)
}

// Read implements io.Reader.
func (fs *FileStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if fs.eof {
		return 0, io.EOF
	}
	data, err := fs.ReadN(len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

var _ io.Reader = (*FileStream)(nil)
