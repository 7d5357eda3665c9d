package repair

import (
	"github.com/quidome/exify/pkg/logging"
	"github.com/quidome/exify/pkg/reconcile"
)

// FileTimeWriter persists the canonical timestamp as the file's modified time.
type FileTimeWriter struct {
	log logging.Logger
}

// NewFileTimeWriter returns a FileTimeWriter. logger may be nil.
func NewFileTimeWriter(logger logging.Logger) *FileTimeWriter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FileTimeWriter{log: logger}
}

// Write derives the canonical timestamp, stores it in
// rec.Timestamps.Modified and applies it to the file.
func (w *FileTimeWriter) Write(rec *reconcile.FileRecord) error {
	if err := checkAnalyzed(rec); err != nil {
		return err
	}

	ts, err := Derive(rec)
	if err != nil {
		return err
	}
	rec.Timestamps.Modified = ts

	w.log.Debug("setting file timestamp", "file", rec.Path(), "value", ts)
	if err := setFileTime(rec.Path(), ts); err != nil {
		return &WriteError{Path: rec.Path(), Op: "filetime", Err: err}
	}
	return nil
}
