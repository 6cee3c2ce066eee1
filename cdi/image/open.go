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

// Package image turns a path on disk, in a CUE sheet, or inside an
// archive into an io.ReaderAt + size pair that cdi.Open can read a CD-I
// volume out of. It knows nothing about CD-I's own sector/Disc Label
// format; its only job is producing bytes.
package image

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-cdi/archive"
	"github.com/ZaparooProject/go-cdi/chd"
)

// ErrNoBinFile indicates a CUE sheet with no FILE lines.
var ErrNoBinFile = errors.New("image: cue sheet names no bin file")

// Source is an opened image ready to be handed to cdi.Open. Close
// releases any file handles or in-memory buffers it holds.
type Source struct {
	ReaderAt io.ReaderAt
	Size     int64
	Close    func() error
}

// OpenRaw opens a raw, headerless-or-framed sector dump (.iso/.bin/.img
// and similar) directly from disk.
func OpenRaw(path string) (*Source, error) {
	f, err := os.Open(path) //nolint:gosec // path is expected to come from the caller
	if err != nil {
		return nil, fmt.Errorf("open raw image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat raw image: %w", err)
	}
	return &Source{ReaderAt: f, Size: info.Size(), Close: f.Close}, nil
}

// OpenCue opens the first BIN file named by a CUE sheet.
func OpenCue(cuePath string) (*Source, error) {
	binPath, err := firstCueBinFile(cuePath)
	if err != nil {
		return nil, err
	}
	return OpenRaw(binPath)
}

// firstCueBinFile extracts the path of the first FILE "..." line in a
// CUE sheet, resolved relative to the sheet's own directory.
func firstCueBinFile(cuePath string) (string, error) {
	f, err := os.Open(cuePath) //nolint:gosec // path is expected to come from the caller
	if err != nil {
		return "", fmt.Errorf("open cue sheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	cueDir := filepath.Dir(cuePath)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToLower(line), "file") {
			continue
		}
		parts := strings.Split(line, "\"")
		if len(parts) < 2 {
			continue
		}
		binFile := strings.TrimSpace(parts[1])
		if !filepath.IsAbs(binFile) {
			binFile = filepath.Join(cueDir, binFile)
		}
		return binFile, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan cue sheet: %w", err)
	}
	return "", ErrNoBinFile
}

// IsCueFile reports whether path has a .cue extension.
func IsCueFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cue")
}

// OpenArchive opens internalPath out of the ZIP, 7z, or RAR archive at
// archivePath, buffering it fully in memory. The entry's bytes are
// returned as they are, so internalPath must name a raw image; a CUE
// sheet inside the archive is not resolved to the BIN file it names.
func OpenArchive(archivePath, internalPath string) (*Source, error) {
	arc, err := archive.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	r, size, closer, err := arc.OpenReaderAt(internalPath)
	if err != nil {
		_ = arc.Close()
		return nil, fmt.Errorf("open %q in archive: %w", internalPath, err)
	}

	return &Source{
		ReaderAt: r,
		Size:     size,
		Close: func() error {
			closeErr := closer.Close()
			archErr := arc.Close()
			if closeErr != nil {
				return closeErr
			}
			return archErr
		},
	}, nil
}

// OpenCHD opens a CHD file, exposing its raw 2352-byte-sector view.
func OpenCHD(path string) (*Source, error) {
	c, err := chd.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chd: %w", err)
	}
	return &Source{
		ReaderAt: c.RawSectorReader(),
		Size:     c.RawSize(),
		Close:    c.Close,
	}, nil
}
