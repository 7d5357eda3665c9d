package reconcile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quidome/exify/pkg/exifcodec"
	"github.com/quidome/exify/pkg/timestamp"
)

const day = 24 * time.Hour

var whatsappDate = time.Date(2014, 4, 30, 0, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", p, err)
	}
	return p
}

func newTestAnalyzer(codec exifcodec.Codec) *Analyzer {
	return NewAnalyzer(codec, Options{
		Tolerance: DefaultTolerance,
		Platform:  timestamp.Linux,
		Location:  time.UTC,
	})
}

func analyze(t *testing.T, a *Analyzer, path string) (*FileRecord, error) {
	t.Helper()

	rec, err := NewFileRecord(path)
	if err != nil {
		t.Fatalf("new record %s: %v", path, err)
	}
	return rec, a.Analyze(context.Background(), rec)
}

func TestNewAnalyzer_Tolerance(t *testing.T) {
	testCases := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{name: "unset", in: 0, want: DefaultTolerance},
		{name: "negative", in: -day, want: DefaultTolerance},
		{name: "explicit", in: 10 * day, want: 10 * day},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAnalyzer(exifcodec.NewMemory(), Options{Tolerance: tc.in})
			if got := a.Tolerance(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAnalyze_NoExif(t *testing.T) {
	p := writeFile(t, t.TempDir(), "IMG-20140430-WA0004.jpg", whatsappDate.Add(2*day))

	rec, err := analyze(t, newTestAnalyzer(exifcodec.NewMemory()), p)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Result.HasExifTimestamp {
		t.Fatalf("expected no exif timestamp")
	}
	if !rec.Result.Consistent || rec.State != Consistent {
		t.Fatalf("expected consistent record, got %+v in state %s", rec.Result, rec.State)
	}
	if len(rec.Timestamps.Exif) != 0 {
		t.Fatalf("expected no exif values, got %v", rec.Timestamps.Exif)
	}
	if !rec.Timestamps.Filename.Equal(whatsappDate) {
		t.Fatalf("expected filename date %v, got %v", whatsappDate, rec.Timestamps.Filename)
	}
	if len(rec.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", rec.Errors)
	}
}

func TestAnalyze_ModifiedTimeDeviation(t *testing.T) {
	testCases := []struct {
		name       string
		offset     time.Duration
		consistent bool
		state      State
	}{
		{name: "10 days off", offset: 10 * day, consistent: true, state: Consistent},
		{name: "40 days off", offset: 40 * day, consistent: false, state: Inconsistent},
		{name: "40 days before", offset: -40 * day, consistent: false, state: Inconsistent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "IMG-20140430-WA0004.jpg", whatsappDate.Add(tc.offset))

			rec, err := analyze(t, newTestAnalyzer(exifcodec.NewMemory()), p)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if rec.Result.Consistent != tc.consistent {
				t.Fatalf("expected consistent=%v, got %v", tc.consistent, rec.Result.Consistent)
			}
			if rec.State != tc.state {
				t.Fatalf("expected state %s, got %s", tc.state, rec.State)
			}
		})
	}
}

func TestAnalyze_ExifTimestampsTakePart(t *testing.T) {
	p := writeFile(t, t.TempDir(), "IMG-20140430-WA0004.jpg", whatsappDate)
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatal(err)
	}

	codec := exifcodec.NewMemory()
	codec.Set(abs, map[exifcodec.Attribute]string{
		exifcodec.DateTimeOriginal: "2016:01:01 12:00:00",
	})

	rec, err := analyze(t, newTestAnalyzer(codec), p)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !rec.Result.HasExifTimestamp {
		t.Fatalf("expected exif timestamp to be found")
	}
	if rec.Result.Consistent {
		t.Fatalf("a two year old exif value must make the file inconsistent")
	}
	want := time.Date(2016, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := rec.Timestamps.Exif[exifcodec.DateTimeOriginal]; !got.Equal(want) {
		t.Fatalf("expected DateTimeOriginal %v, got %v", want, got)
	}
}

func TestAnalyze_MissingFileFails(t *testing.T) {
	p := filepath.Join(t.TempDir(), "IMG-20140430-WA0004.jpg")

	rec, err := analyze(t, newTestAnalyzer(exifcodec.NewMemory()), p)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if rec.State != Failed {
		t.Fatalf("expected state %s, got %s", Failed, rec.State)
	}
	if len(rec.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %v", rec.Errors)
	}
	if !errors.Is(rec.Err(), fs.ErrNotExist) {
		t.Fatalf("expected recorded fs.ErrNotExist, got %v", rec.Err())
	}
	if rec.Result.Consistent {
		t.Fatalf("failed record must not be consistent")
	}
}

func TestAnalyze_NameWithoutDateFails(t *testing.T) {
	p := writeFile(t, t.TempDir(), "holiday.jpg", whatsappDate)

	rec, err := analyze(t, newTestAnalyzer(exifcodec.NewMemory()), p)
	if !errors.Is(err, timestamp.ErrNoPatternMatch) {
		t.Fatalf("expected ErrNoPatternMatch, got %v", err)
	}
	if rec.State != Failed {
		t.Fatalf("expected state %s, got %s", Failed, rec.State)
	}
}

type brokenCodec struct{}

func (brokenCodec) GetTimestamps(string) (map[exifcodec.Attribute]string, error) {
	return nil, errors.New("disk on fire")
}

func (brokenCodec) UpdateTimestamps(string, map[exifcodec.Attribute]string) error {
	return errors.New("disk on fire")
}

func TestAnalyze_CodecErrorFails(t *testing.T) {
	p := writeFile(t, t.TempDir(), "IMG-20140430-WA0004.jpg", whatsappDate)

	rec, err := analyze(t, newTestAnalyzer(brokenCodec{}), p)
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected codec error, got %v", err)
	}
	if rec.State != Failed {
		t.Fatalf("expected state %s, got %s", Failed, rec.State)
	}
}

func TestAnalyze_CancelledContextFails(t *testing.T) {
	p := writeFile(t, t.TempDir(), "IMG-20140430-WA0004.jpg", whatsappDate)
	rec, err := NewFileRecord(p)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = newTestAnalyzer(exifcodec.NewMemory()).Analyze(ctx, rec)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.State != Failed {
		t.Fatalf("expected state %s, got %s", Failed, rec.State)
	}
}

func TestAnalyze_ReanalysisRefreshesTimestamps(t *testing.T) {
	p := writeFile(t, t.TempDir(), "IMG-20140430-WA0004.jpg", whatsappDate.Add(40*day))
	a := newTestAnalyzer(exifcodec.NewMemory())

	rec, err := analyze(t, a, p)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.State != Inconsistent {
		t.Fatalf("expected state %s, got %s", Inconsistent, rec.State)
	}

	if err := os.Chtimes(p, whatsappDate, whatsappDate); err != nil {
		t.Fatal(err)
	}
	if err := a.Analyze(context.Background(), rec); err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if rec.State != Consistent {
		t.Fatalf("expected state %s after fixing mtime, got %s", Consistent, rec.State)
	}
	if !rec.Timestamps.Modified.Equal(whatsappDate) {
		t.Fatalf("expected refreshed mtime %v, got %v", whatsappDate, rec.Timestamps.Modified)
	}
}

func TestNewFileRecord_Absolute(t *testing.T) {
	rec, err := NewFileRecord("IMG-20140430-WA0004.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(rec.Path()) {
		t.Fatalf("expected absolute path, got %q", rec.Path())
	}
	if rec.State != Unanalyzed {
		t.Fatalf("expected state %s, got %s", Unanalyzed, rec.State)
	}
	if err := rec.Err(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestFileRecord_CloneIsDeep(t *testing.T) {
	rec, err := NewFileRecord("a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	rec.Timestamps.Exif = map[exifcodec.Attribute]time.Time{exifcodec.DateTime: whatsappDate}
	rec.AddError(errors.New("first"))

	c := rec.Clone()
	c.Timestamps.Exif[exifcodec.DateTimeOriginal] = whatsappDate
	c.AddError(errors.New("second"))

	if len(rec.Timestamps.Exif) != 1 {
		t.Fatalf("clone shares the exif map: %v", rec.Timestamps.Exif)
	}
	if len(rec.Errors) != 1 {
		t.Fatalf("clone shares the error list: %v", rec.Errors)
	}
	if rec.Path() != c.Path() {
		t.Fatalf("clone changed the path: %q != %q", c.Path(), rec.Path())
	}
}
