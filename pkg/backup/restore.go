package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Result contains the outcome of restoring one backup.
type Result struct {
	Backup  string
	Target  string
	Success bool
	Error   error
}

// Options configures Restore.
type Options struct {
	// Overwrite allows replacing existing files. Restoring a repaired file
	// needs it.
	Overwrite bool
}

// Entry pairs a backup file with the file it restores.
type Entry struct {
	Backup string
	Target string
}

// List returns the backups below s.Root ordered by path.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Backup: path,
			Target: filepath.Join(s.BaseDir, strings.TrimSuffix(rel, ext)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.Root, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Backup < entries[j].Backup
	})
	return entries, nil
}

// Restore decompresses every backup below s.Root back to its place below
// s.BaseDir and reinstates the original modification time.
//
// A failing file does not stop the others; its Result carries the error.
func (s *Store) Restore(opts Options) ([]Result, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		result := Result{Backup: e.Backup, Target: e.Target}
		if err := decompressFile(e.Backup, e.Target, opts.Overwrite); err != nil {
			result.Error = err
		} else {
			result.Success = true
		}
		results = append(results, result)
	}
	return results, nil
}

func decompressFile(src, dst string, allowOverwrite bool) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat backup: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if !allowOverwrite {
		flags |= os.O_EXCL
	} else {
		flags |= os.O_TRUNC
	}

	out, err := os.OpenFile(dst, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrDestinationExists
		}
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	if _, err := io.Copy(out, dec); err != nil {
		return fmt.Errorf("decompress %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("restore time: %w", err)
	}
	return nil
}
