// Package duplicates finds files with identical content.
//
// Candidates are bucketed by size, then by a hash of their first 64 KiB, and
// only files that share both are compared byte for byte. Within a group of
// identical files the one with the oldest date is kept.
package duplicates

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/quidome/exify/pkg/scan"
	"github.com/quidome/exify/pkg/timestamp"
)

const headerBytes = 64 * 1024

// Candidate is a file considered for duplicate detection.
type Candidate struct {
	Path string
	Size int64
	// Date ranks identical files; the oldest is kept. Zero sorts last.
	Date time.Time
}

// Group is a set of identical files.
type Group struct {
	Keep       string   `json:"keep"`
	Duplicates []string `json:"duplicates"`
}

// Candidates turns scan records into candidates dated by their filename,
// falling back to the modification time for names without a date.
func Candidates(records []scan.Record, loc *time.Location) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, r := range records {
		date, err := timestamp.FromFilename(r.Path, loc)
		if err != nil {
			date = r.ModTime
		}
		out = append(out, Candidate{Path: r.Path, Size: r.Size, Date: date})
	}
	return out
}

// Find returns one Group per set of two or more identical files, ordered by
// the path of the kept file.
func Find(candidates []Candidate) ([]Group, error) {
	bySize := make(map[int64][]Candidate)
	for _, c := range candidates {
		bySize[c.Size] = append(bySize[c.Size], c)
	}

	var groups []Group
	for size, sameSize := range bySize {
		if len(sameSize) < 2 {
			continue
		}

		byHeader := make(map[[32]byte][]Candidate)
		for _, c := range sameSize {
			h, err := headerHash(c.Path, size)
			if err != nil {
				return nil, err
			}
			byHeader[h] = append(byHeader[h], c)
		}

		for _, sameHeader := range byHeader {
			if len(sameHeader) < 2 {
				continue
			}
			clusters, err := cluster(sameHeader)
			if err != nil {
				return nil, err
			}
			for _, members := range clusters {
				if len(members) < 2 {
					continue
				}
				groups = append(groups, newGroup(members))
			}
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Keep < groups[j].Keep
	})
	return groups, nil
}

// cluster partitions candidates into sets of byte-identical files.
func cluster(candidates []Candidate) ([][]Candidate, error) {
	var clusters [][]Candidate
	for _, c := range candidates {
		assigned := false
		for i, members := range clusters {
			identical, err := sameContent(c.Path, members[0].Path)
			if err != nil {
				return nil, err
			}
			if identical {
				clusters[i] = append(clusters[i], c)
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, []Candidate{c})
		}
	}
	return clusters, nil
}

func newGroup(members []Candidate) Group {
	sorted := append([]Candidate(nil), members...)
	sort.Slice(sorted, func(i, j int) bool {
		return older(sorted[i], sorted[j])
	})

	g := Group{Keep: sorted[0].Path}
	for _, m := range sorted[1:] {
		g.Duplicates = append(g.Duplicates, m.Path)
	}
	sort.Strings(g.Duplicates)
	return g
}

// older orders by date with unknown dates last, then by path.
func older(a, b Candidate) bool {
	switch {
	case a.Date.IsZero() != b.Date.IsZero():
		return !a.Date.IsZero()
	case !a.Date.Equal(b.Date):
		return a.Date.Before(b.Date)
	default:
		return a.Path < b.Path
	}
}

func headerHash(path string, size int64) ([32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyN(h, f, min(size, headerBytes)); err != nil && !errors.Is(err, io.EOF) {
		return [32]byte{}, fmt.Errorf("read header %s: %w", path, err)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

func sameContent(path1, path2 string) (bool, error) {
	f1, err := os.Open(path1)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path1, err)
	}
	defer f1.Close()
	f2, err := os.Open(path2)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path2, err)
	}
	defer f2.Close()

	buf1 := make([]byte, 32*1024)
	buf2 := make([]byte, 32*1024)
	for {
		n1, err1 := io.ReadFull(f1, buf1)
		n2, err2 := io.ReadFull(f2, buf2)
		if !bytes.Equal(buf1[:n1], buf2[:n2]) {
			return false, nil
		}

		done1 := errors.Is(err1, io.EOF) || errors.Is(err1, io.ErrUnexpectedEOF)
		done2 := errors.Is(err2, io.EOF) || errors.Is(err2, io.ErrUnexpectedEOF)
		if err1 != nil && !done1 {
			return false, fmt.Errorf("read %s: %w", path1, err1)
		}
		if err2 != nil && !done2 {
			return false, fmt.Errorf("read %s: %w", path2, err2)
		}
		if done1 || done2 {
			return done1 && done2, nil
		}
	}
}
