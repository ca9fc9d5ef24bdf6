package export

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"fpm/internal/paths"
)

// maxEntryBytes bounds a single restored file
const maxEntryBytes = 64 << 20

// archivedDirs are the database subdirectories that go into an archive
var archivedDirs = []string{paths.ProjectsSubdir, paths.ModulesSubdir, paths.ManifestsSubdir}

// WriteArchive writes every record file under layout to w as a
// zstd-compressed tar stream. Entries are ordered by subdirectory, then path.
func WriteArchive(ctx context.Context, layout paths.Layout, w io.Writer) (_ *ArchiveResult, err error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	defer func() {
		if closeErr := enc.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing zstd writer: %w", closeErr)
		}
	}()

	tw := tar.NewWriter(enc)
	defer func() {
		if closeErr := tw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing tar writer: %w", closeErr)
		}
	}()

	result := &ArchiveResult{}
	for _, dir := range archivedDirs {
		files, listErr := paths.ListFiles(filepath.Join(layout.Root, dir))
		if listErr != nil {
			if errors.Is(listErr, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("listing %s: %w", dir, listErr)
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entry, addErr := addFile(tw, layout.Root, file)
			if addErr != nil {
				return nil, addErr
			}
			result.Entries = append(result.Entries, entry)
			result.Bytes += entry.Size
		}
	}
	return result, nil
}

func addFile(tw *tar.Writer, root, file string) (Entry, error) {
	rel, err := paths.RelativeTo(root, file)
	if err != nil {
		return Entry{}, err
	}
	name := filepath.ToSlash(rel)

	f, err := os.Open(file)
	if err != nil {
		return Entry{}, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() {
		// Read-only handle
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", name, err)
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     info.Size(),
		ModTime:  info.ModTime().UTC().Truncate(time.Second),
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return Entry{}, fmt.Errorf("writing header for %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return Entry{}, fmt.Errorf("archiving %s: %w", name, err)
	}
	return Entry{Path: name, Size: info.Size()}, nil
}

// ListArchive returns the entries of an archive written by WriteArchive.
func ListArchive(r io.Reader) ([]Entry, error) {
	var entries []Entry
	err := walkArchive(r, func(hdr *tar.Header, _ io.Reader) error {
		entries = append(entries, Entry{Path: hdr.Name, Size: hdr.Size})
		return nil
	})
	return entries, err
}

// RestoreArchive extracts an archive into layout.Root. Existing files are
// never overwritten, and entries outside the database subdirectories are
// rejected.
func RestoreArchive(ctx context.Context, r io.Reader, layout paths.Layout) (*ArchiveResult, error) {
	if err := layout.Ensure(); err != nil {
		return nil, fmt.Errorf("creating database directories: %w", err)
	}

	result := &ArchiveResult{}
	err := walkArchive(r, func(hdr *tar.Header, content io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := restorePath(layout.Root, hdr.Name)
		if err != nil {
			return err
		}
		if hdr.Size > maxEntryBytes {
			return fmt.Errorf("entry %s is too large (%d bytes)", hdr.Name, hdr.Size)
		}
		n, err := writeNew(target, content)
		if err != nil {
			return fmt.Errorf("restoring %s: %w", hdr.Name, err)
		}
		result.Entries = append(result.Entries, Entry{Path: hdr.Name, Size: n})
		result.Bytes += n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// restorePath maps an entry name to a path under root, refusing anything
// outside the archived subdirectories.
func restorePath(root, name string) (string, error) {
	clean := path.Clean(name)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("entry %q escapes the database root", name)
	}
	top := strings.SplitN(clean, "/", 2)[0]
	allowed := false
	for _, dir := range archivedDirs {
		if top == dir && clean != dir {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("entry %q is not part of a database", name)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

func writeNew(target string, content io.Reader) (_ int64, err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return io.Copy(f, io.LimitReader(content, maxEntryBytes))
}

// walkArchive calls fn for every regular file of a zstd-compressed tar stream
func walkArchive(r io.Reader, fn func(*tar.Header, io.Reader) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}
