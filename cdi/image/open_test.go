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

package image_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/go-cdi/cdi/image"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOpenRaw(t *testing.T) {
	t.Parallel()

	content := []byte("raw sector bytes")
	path := writeFile(t, t.TempDir(), "disc.bin", content)

	src, err := image.OpenRaw(path)
	if err != nil {
		t.Fatalf("OpenRaw: %v", err)
	}
	defer func() { _ = src.Close() }()

	if src.Size != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", src.Size, len(content))
	}
	buf := make([]byte, 3)
	if _, err := src.ReaderAt.ReadAt(buf, 4); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(buf, []byte("sec")) {
		t.Fatalf("ReadAt = %q", buf)
	}
}

func TestOpenCue_ResolvesBinRelativeToSheet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := []byte("bin contents")
	writeFile(t, dir, "disc.bin", content)
	cuePath := writeFile(t, dir, "disc.cue",
		[]byte("FILE \"disc.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"))

	src, err := image.OpenCue(cuePath)
	if err != nil {
		t.Fatalf("OpenCue: %v", err)
	}
	defer func() { _ = src.Close() }()

	if src.Size != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", src.Size, len(content))
	}
}

func TestOpenCue_NoBinFile(t *testing.T) {
	t.Parallel()

	cuePath := writeFile(t, t.TempDir(), "empty.cue", []byte("REM nothing here\n"))

	_, err := image.OpenCue(cuePath)
	if !errors.Is(err, image.ErrNoBinFile) {
		t.Fatalf("err = %v, want ErrNoBinFile", err)
	}
}

func TestIsCueFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"game.cue", true},
		{"GAME.CUE", true},
		{"game.bin", false},
		{"cue", false},
	}
	for _, tt := range tests {
		if got := image.IsCueFile(tt.path); got != tt.want {
			t.Errorf("IsCueFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOpenArchive_ZIP(t *testing.T) {
	t.Parallel()

	content := []byte("image inside a zip")
	zipPath := filepath.Join(t.TempDir(), "disc.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	entry, err := w.Create("subdir/disc.bin")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write(content); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}

	src, err := image.OpenArchive(zipPath, "subdir/disc.bin")
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer func() { _ = src.Close() }()

	if src.Size != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", src.Size, len(content))
	}
	buf := make([]byte, len(content))
	if _, err := src.ReaderAt.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(buf, content) {
		t.Fatalf("ReadAt = %q, want %q", buf, content)
	}
}

func TestOpenArchive_MissingEntry(t *testing.T) {
	t.Parallel()

	zipPath := filepath.Join(t.TempDir(), "disc.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	if _, err := w.Create("other.bin"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}

	if _, err := image.OpenArchive(zipPath, "missing.bin"); err == nil {
		t.Fatalf("expected error for missing archive entry")
	}
}
