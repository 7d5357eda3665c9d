// Package backup keeps zstd-compressed copies of files before they are modified.
//
// Backups mirror the layout below the base directory:
//
//	<root>/<path relative to base>.zst
//
// The first backup of a file wins, so the copy always holds the original
// bytes even when a file is repaired several times. The backup file carries
// the modification time of the original.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const ext = ".zst"

var (
	// ErrDestinationExists is returned when a restore target exists and
	// overwriting is disabled.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrOutsideBase is returned for files that do not live below the base directory.
	ErrOutsideBase = errors.New("file is outside the base directory")
)

// Store saves backups below Root for files below BaseDir.
type Store struct {
	Root    string
	BaseDir string
}

// New returns a Store. Both directories are made absolute.
func New(root, baseDir string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", baseDir, err)
	}
	return &Store{Root: absRoot, BaseDir: absBase}, nil
}

// PathFor returns the backup location of src.
func (s *Store) PathFor(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", src, err)
	}
	rel, err := filepath.Rel(s.BaseDir, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", src, ErrOutsideBase)
	}
	return filepath.Join(s.Root, rel+ext), nil
}

// Save stores a compressed copy of src unless one exists already.
// It returns the backup path and whether a new backup was written.
func (s *Store) Save(src string) (string, bool, error) {
	dst, err := s.PathFor(src)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(dst); err == nil {
		return dst, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("stat %s: %w", dst, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", false, fmt.Errorf("create directory: %w", err)
	}
	if err := compressFile(src, dst); err != nil {
		return "", false, err
	}
	return dst, true, nil
}

// compressFile writes src into a temp file next to dst and renames it into
// place, so a backup is either complete or absent.
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("compress %s: %w", src, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("compress %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("commit backup: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set backup time: %w", err)
	}
	return nil
}
