package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// WhatsAppMarker is the fragment every WhatsApp export carries in its name,
// as in IMG-20140430-WA0004.jpg.
const WhatsAppMarker = "WA"

type Options struct {
	// MaxDepth limits recursion; -1 walks the whole tree, 0 only the root.
	MaxDepth int

	Extensions []string

	// WhatsAppOnly keeps only files whose name contains WhatsAppMarker.
	WhatsAppOnly bool
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:     -1,
		Extensions:   []string{".jpg", ".jpeg"},
		WhatsAppOnly: true,
	}
}

// Record is a candidate file found by a scan.
type Record struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Dir scans a directory on disk and returns records with absolute paths.
func Dir(dir string, opts Options) ([]Record, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", abs)
	}

	records, err := Scan(os.DirFS(abs), ".", opts)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Path = filepath.Join(abs, filepath.FromSlash(records[i].Path))
	}
	return records, nil
}

// Paths returns the paths of records in order.
func Paths(records []Record) []string {
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path)
	}
	return paths
}

// Scan walks root inside fsys and returns matching regular files with
// slash-separated paths relative to root, sorted by path.
func Scan(fsys fs.FS, root string, opts Options) ([]Record, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	exts := normalizeExts(opts.Extensions)

	var matches []Record

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
			return nil
		}
		if !Match(d.Name(), exts, opts.WhatsAppOnly) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		matches = append(matches, Record{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}

// Match reports whether a file name passes the extension and WhatsApp filters.
func Match(name string, exts map[string]bool, whatsAppOnly bool) bool {
	if !exts[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	if whatsAppOnly && !strings.Contains(name, WhatsAppMarker) {
		return false
	}
	return true
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(strings.ToLower(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

func depth(rel string) int {
	rel = filepath.Clean(rel)
	if rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/")
}
