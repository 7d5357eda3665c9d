// Package repair derives the canonical timestamp of an analyzed file and
// writes it back to EXIF and filesystem metadata.
package repair

import (
	"errors"
	"fmt"
	"time"

	"github.com/quidome/exify/pkg/reconcile"
)

// Time of day assigned to the date carried by the file name.
const (
	canonicalHour   = 10
	canonicalMinute = 30
)

var (
	// ErrMissingGroundTruth is returned when a record has no filename timestamp.
	ErrMissingGroundTruth = errors.New("no filename timestamp to derive from")

	// ErrNotAnalyzed is returned when a writer gets a record that did not
	// finish analysis successfully.
	ErrNotAnalyzed = errors.New("record is not analyzed")
)

// WriteError reports a failed metadata write.
type WriteError struct {
	Path string
	Op   string // "exif" or "filetime"
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s of %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Derive returns the filename date of rec at 10:30:00 in the same location.
func Derive(rec *reconcile.FileRecord) (time.Time, error) {
	ts := rec.Timestamps.Filename
	if ts.IsZero() {
		return time.Time{}, fmt.Errorf("%s: %w", rec.Path(), ErrMissingGroundTruth)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), canonicalHour, canonicalMinute, 0, 0, ts.Location()), nil
}

func checkAnalyzed(rec *reconcile.FileRecord) error {
	if !rec.State.Analyzed() {
		return fmt.Errorf("%s is %s: %w", rec.Path(), rec.State, ErrNotAnalyzed)
	}
	return nil
}
