package repair

import (
	"time"

	"github.com/quidome/exify/pkg/exifcodec"
	"github.com/quidome/exify/pkg/logging"
	"github.com/quidome/exify/pkg/reconcile"
)

// ExifWriter persists the default EXIF timestamp attribute.
type ExifWriter struct {
	codec exifcodec.Codec
	log   logging.Logger
}

// NewExifWriter returns an ExifWriter. logger may be nil.
func NewExifWriter(codec exifcodec.Codec, logger logging.Logger) *ExifWriter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ExifWriter{codec: codec, log: logger}
}

// Write stores the default attribute of rec through the codec. When rec has
// no value for it yet, the canonical timestamp is derived and recorded in
// rec.Timestamps.Exif first.
//
// An existing value is written again unchanged, so callers should skip
// records that already have an EXIF timestamp.
func (w *ExifWriter) Write(rec *reconcile.FileRecord) error {
	if err := checkAnalyzed(rec); err != nil {
		return err
	}

	attr := exifcodec.DefaultAttribute
	ts, ok := rec.Timestamps.Exif[attr]
	if !ok {
		derived, err := Derive(rec)
		if err != nil {
			return err
		}
		if rec.Timestamps.Exif == nil {
			rec.Timestamps.Exif = make(map[exifcodec.Attribute]time.Time)
		}
		rec.Timestamps.Exif[attr] = derived
		ts = derived
		w.log.Debug("using timestamp", "file", rec.Path(), "attr", attr, "value", derived)
	}

	w.log.Debug("updating exif data", "file", rec.Path())
	value := exifcodec.Format(ts)
	if err := w.codec.UpdateTimestamps(rec.Path(), map[exifcodec.Attribute]string{attr: value}); err != nil {
		return &WriteError{Path: rec.Path(), Op: "exif", Err: err}
	}
	return nil
}
