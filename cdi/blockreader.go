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

// blockBytes reads length bytes starting relOffset bytes into the
// contiguous run of Form 1 data sectors beginning at startSector. Both
// the Path Table and every Directory are laid out this way: a run of
// sectors at consecutive indices, read as one flat byte stream.
func blockBytes(img *Image, startSector int64, relOffset, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	idx := startSector + int64(relOffset/2048)
	pos := relOffset % 2048
	remaining := length
	for remaining > 0 {
		s, err := img.Sector(idx)
		if err != nil {
			return nil, fmt.Errorf("read block bytes: %w", err)
		}
		avail := s.DataSize() - pos
		if avail <= 0 {
			idx++
			pos = 0
			continue
		}
		n := min(avail, remaining)
		data, err := s.Data(pos, pos+n)
		if err != nil {
			return nil, fmt.Errorf("read block bytes: %w", err)
		}
		out = append(out, data...)
		remaining -= n
		pos += n
		if pos >= s.DataSize() {
			idx++
			pos = 0
		}
	}
	return out, nil
}
