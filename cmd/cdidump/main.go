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

// Command cdidump prints a CD-I disc image's volume label, path table,
// and file listing. It is a diagnostic tool, not a decoder front end.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ZaparooProject/go-cdi/archive"
	"github.com/ZaparooProject/go-cdi/cdi"
	cdiimage "github.com/ZaparooProject/go-cdi/cdi/image"
)

var (
	inputFile    = flag.String("i", "", "input image path: .iso/.bin/.img, .cue, .chd, or an archive (required)")
	internalPath = flag.String("p", "", "path within an archive (-i must point at the archive)")
	listFiles    = flag.Bool("files", false, "list every file in the volume")
	version      = flag.Bool("version", false, "print version and exit")
)

const appVersion = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <image> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Prints a CD-I disc image's volume label, path table, and file listing.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i game.cue\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i game.chd -files\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i archive.zip -p disc/game.bin\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i archive.zip/disc/game.bin\n", os.Args[0])
	}
	flag.Parse()

	if *version {
		fmt.Printf("cdidump version %s\n", appVersion)
		os.Exit(0)
	}

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: input image required (-i)")
		flag.Usage()
		os.Exit(1)
	}

	src, err := openSource(*inputFile, *internalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening image: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = src.Close() }()

	disc, err := cdi.Open(src.ReaderAt, src.Size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing volume: %v\n", err)
		os.Exit(1)
	}

	printVolumeLabel(disc)
	printPathTable(disc)
	if *listFiles {
		printFiles(disc)
	}
}

// openSource resolves -i/-p into a readable Source. When -p is empty
// but -i itself looks like a MiSTer-style combined path (an archive
// extension followed by an internal path component), archive.ParsePath
// splits it so users don't need -p for the common case. A bare archive
// path with no internal component is not split; with no -p it is
// opened as a raw image like any other file.
func openSource(path, internal string) (*cdiimage.Source, error) {
	if internal == "" && archive.IsArchivePath(path) {
		parsed, err := archive.ParsePath(path)
		if err != nil {
			return nil, fmt.Errorf("parse archive path: %w", err)
		}
		if parsed != nil && parsed.InternalPath != "" {
			path, internal = parsed.ArchivePath, parsed.InternalPath
		}
	}

	if internal != "" {
		return cdiimage.OpenArchive(path, internal)
	}
	switch {
	case cdiimage.IsCueFile(path):
		return cdiimage.OpenCue(path)
	case strings.EqualFold(ext(path), ".chd"):
		return cdiimage.OpenCHD(path)
	default:
		return cdiimage.OpenRaw(path)
	}
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func printVolumeLabel(disc *cdi.Disc) {
	label := disc.Labels[0]
	fmt.Println("Volume Label:")
	fmt.Printf("  System ID:      %s\n", label.SystemID)
	fmt.Printf("  Volume ID:      %s\n", label.VolumeID)
	fmt.Printf("  Volume Size:    %d blocks\n", label.VolumeSize)
	fmt.Printf("  Album ID:       %s\n", label.AlbumID)
	fmt.Printf("  Publisher ID:   %s\n", label.PublisherID)
	fmt.Printf("  Data Preparer:  %s\n", label.DataPreparer)
	fmt.Printf("  Application ID: %s\n", label.AppID)
	if label.CreatedDate != nil {
		fmt.Printf("  Created:        %s\n", label.CreatedDate.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Standard Labels: %d\n", len(disc.Labels))
	fmt.Println()
}

func printPathTable(disc *cdi.Disc) {
	fmt.Println("Path Table:")
	for i, e := range disc.PathTable {
		fmt.Printf("  [%3d] parent=%-3d lbn=%-6d %s\n", i+1, e.ParentIdx, e.DirAddr, e.FullName)
	}
	fmt.Println()
}

func printFiles(disc *cdi.Disc) {
	fmt.Println("Files:")
	for f := range disc.Files() {
		kind := "file"
		if f.IsDir {
			kind = "dir "
		}
		fmt.Printf("  %s %10d  %s\n", kind, f.Size, f.FullName)
	}
}
