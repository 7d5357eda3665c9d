package reconcile

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/quidome/exify/pkg/timestamp"
)

// State is the analysis state of a FileRecord.
type State int

const (
	Unanalyzed State = iota
	Analyzing
	Consistent
	Inconsistent
	Failed
)

func (s State) String() string {
	switch s {
	case Unanalyzed:
		return "unanalyzed"
	case Analyzing:
		return "analyzing"
	case Consistent:
		return "consistent"
	case Inconsistent:
		return "inconsistent"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Analyzed reports whether analysis finished successfully.
func (s State) Analyzed() bool {
	return s == Consistent || s == Inconsistent
}

// AnalysisResult is the outcome of one analysis pass.
type AnalysisResult struct {
	Consistent       bool `json:"consistent"`
	HasExifTimestamp bool `json:"has_exif_timestamp"`
}

// FileRecord tracks one photo file through analysis and repair.
type FileRecord struct {
	path string

	Timestamps timestamp.Set
	Result     AnalysisResult
	State      State

	// Errors is append-only, see AddError.
	Errors []error
}

// NewFileRecord returns a record for path, made absolute.
func NewFileRecord(path string) (*FileRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return &FileRecord{path: abs}, nil
}

// Path returns the absolute path of the file.
func (r *FileRecord) Path() string {
	return r.path
}

// AddError records a failure for this file.
func (r *FileRecord) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// MarkFailed records err and moves the record to the Failed state.
func (r *FileRecord) MarkFailed(err error) {
	r.AddError(err)
	r.State = Failed
}

// Err joins all recorded errors, nil if there are none.
func (r *FileRecord) Err() error {
	return errors.Join(r.Errors...)
}

// Clone returns a deep copy of r.
func (r *FileRecord) Clone() *FileRecord {
	c := *r
	c.Errors = slices.Clone(r.Errors)
	c.Timestamps.Exif = maps.Clone(r.Timestamps.Exif)
	return &c
}
