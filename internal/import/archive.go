// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

var (
	// ErrArchiveNotFound is returned when the archive path does not resolve.
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrEntryNotFound is returned when the archive holds no entry with the
	// requested name.
	ErrEntryNotFound = errors.New("archive entry not found")
)

// entryReader closes the entry and then the archive that owns it.
type entryReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (e *entryReader) Close() error {
	entryErr := e.ReadCloser.Close()
	archiveErr := e.archive.Close()
	return errors.Join(entryErr, archiveErr)
}

// OpenArchiveEntry opens the named entry of a zip archive for streaming.
// Entries are scanned in directory order and the first whose name, or base
// name, equals entry wins. The caller must Close the returned reader.
func OpenArchiveEntry(archivePath, entry string) (io.ReadCloser, error) {
	if _, err := os.Stat(archivePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, archivePath)
		}
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}

	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.Name != entry && path.Base(f.Name) != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			_ = archive.Close()
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		return &entryReader{ReadCloser: rc, archive: archive}, nil
	}

	_ = archive.Close()
	return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, entry, archivePath)
}
