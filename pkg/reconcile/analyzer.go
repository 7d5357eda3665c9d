// Package reconcile decides whether the timestamps of a photo file agree.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quidome/exify/pkg/exifcodec"
	"github.com/quidome/exify/pkg/logging"
	"github.com/quidome/exify/pkg/timestamp"
)

// Options configures an Analyzer.
type Options struct {
	// Tolerance is the accepted spread. Zero means DefaultTolerance.
	Tolerance time.Duration

	// Platform selects which file attribute supplies the created time.
	// The zero value is timestamp.Linux; use timestamp.CurrentPlatform().
	Platform timestamp.Platform

	// Location is used for naive filename and EXIF values.
	// If nil, time.Local is used.
	Location *time.Location

	Logger logging.Logger
}

// Analyzer collects the timestamps of a file and evaluates their spread.
type Analyzer struct {
	codec     exifcodec.Codec
	attrs     timestamp.AttributeMap
	tolerance time.Duration
	loc       *time.Location
	log       logging.Logger
}

// NewAnalyzer returns an Analyzer reading EXIF through codec.
func NewAnalyzer(codec exifcodec.Codec, opts Options) *Analyzer {
	a := &Analyzer{
		codec:     codec,
		attrs:     timestamp.AttributeMapFor(opts.Platform),
		tolerance: opts.Tolerance,
		loc:       opts.Location,
		log:       opts.Logger,
	}
	if a.tolerance <= 0 {
		a.tolerance = DefaultTolerance
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.log == nil {
		a.log = logging.NewNopLogger()
	}
	return a
}

// Tolerance returns the configured tolerance.
func (a *Analyzer) Tolerance() time.Duration {
	return a.tolerance
}

// Analyze populates rec.Timestamps and rec.Result.
//
// A file without EXIF timestamps is analyzed normally. Any other failure
// (missing file, no date in the name, I/O error, cancelled ctx) leaves rec in
// the Failed state with the error recorded, and is returned.
func (a *Analyzer) Analyze(ctx context.Context, rec *FileRecord) error {
	rec.State = Analyzing
	rec.Result = AnalysisResult{}

	set, err := a.gather(ctx, rec.Path())
	if err != nil {
		rec.MarkFailed(err)
		a.log.Debug("analysis failed", "file", rec.Path(), "error", err)
		return err
	}

	rec.Timestamps = set
	rec.Result = AnalysisResult{
		HasExifTimestamp: set.HasExif(),
		Consistent:       WithinTolerance(set.Values(true), a.tolerance),
	}
	if rec.Result.Consistent {
		rec.State = Consistent
	} else {
		rec.State = Inconsistent
	}

	a.log.Debug("analyzed",
		"file", rec.Path(),
		"consistent", rec.Result.Consistent,
		"has_exif", rec.Result.HasExifTimestamp,
		"spread", Spread(set.Values(true)),
	)
	return nil
}

func (a *Analyzer) gather(ctx context.Context, path string) (timestamp.Set, error) {
	if err := ctx.Err(); err != nil {
		return timestamp.Set{}, err
	}

	name, err := timestamp.FromFilename(path, a.loc)
	if err != nil {
		return timestamp.Set{}, err
	}
	a.log.Debug("timestamp", "file", path, "src", "name", "value", name)

	created, err := timestamp.FromFileSystem(path, timestamp.Created, a.attrs)
	if err != nil {
		return timestamp.Set{}, err
	}
	modified, err := timestamp.FromFileSystem(path, timestamp.Modified, a.attrs)
	if err != nil {
		return timestamp.Set{}, err
	}
	a.log.Debug("timestamp", "file", path, "src", "fs", "created", created, "modified", modified)

	if err := ctx.Err(); err != nil {
		return timestamp.Set{}, err
	}

	exifValues, err := timestamp.FromExif(path, a.codec, a.loc)
	switch {
	case errors.Is(err, timestamp.ErrNoExifData):
		a.log.Info("no exif timestamps found", "file", path)
		exifValues = nil
	case err != nil:
		return timestamp.Set{}, fmt.Errorf("read exif: %w", err)
	default:
		for attr, v := range exifValues {
			a.log.Debug("timestamp", "file", path, "src", "exif", "attr", attr, "value", v)
		}
	}

	if err := ctx.Err(); err != nil {
		return timestamp.Set{}, err
	}

	return timestamp.NewBuilder().
		Filename(name).
		Created(created).
		Modified(modified).
		Exif(exifValues).
		Build()
}
