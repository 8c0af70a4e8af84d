// Package backup archives a file backed library and ships the archive to an
// S3 compatible bucket.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/citegraph/internal/constants"
	"github.com/Paintersrp/citegraph/internal/pathutil"
	"github.com/Paintersrp/citegraph/internal/store/file"
)

// ErrUnsafePath is returned when an archive entry would land outside the
// library directory.
var ErrUnsafePath = errors.New("archive entry escapes library directory")

// maxEntrySize bounds a single restored file.
const maxEntrySize = 64 << 20

// Entries lists the library relative roots that make up a backup. A review
// directory outside the library is not part of it.
func Entries(reviewDir string) []string {
	roots := []string{
		file.PapersDir,
		file.RelationshipsFile,
		filepath.ToSlash(filepath.Join(constants.StateDir, constants.ViewFile)),
	}
	if reviewDir != "" && !filepath.IsAbs(reviewDir) {
		roots = append(roots, filepath.ToSlash(filepath.Clean(reviewDir)))
	}
	return roots
}

// Archive writes a gzipped tarball of the library at dir to w. Missing roots
// are skipped, as are hidden files below them.
func Archive(dir string, roots []string, w io.Writer) (int, error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	count := 0
	for _, root := range roots {
		start, ok := pathutil.Within(dir, root)
		if !ok {
			return count, fmt.Errorf("%w: %s", ErrUnsafePath, root)
		}
		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if path != start && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			rel, err := pathutil.LibraryRelative(dir, path)
			if err != nil {
				return err
			}
			if err := addFile(tw, path, rel); err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			return count, err
		}
	}

	if err := tw.Close(); err != nil {
		return count, err
	}
	return count, gz.Close()
}

func addFile(tw *tar.Writer, path, rel string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = rel

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// Restore extracts an archive produced by Archive into dir, overwriting
// existing files. It returns the number of files written.
func Restore(r io.Reader, dir string) (int, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	count := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		target, ok := pathutil.Within(dir, header.Name)
		if !ok {
			return count, fmt.Errorf("%w: %s", ErrUnsafePath, header.Name)
		}
		if header.Size > maxEntrySize {
			return count, fmt.Errorf("archive entry %s is too large", header.Name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return count, err
		}
		if err := writeEntry(target, tr); err != nil {
			return count, err
		}
		count++
	}
}

func writeEntry(target string, r io.Reader) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.LimitReader(r, maxEntrySize)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
