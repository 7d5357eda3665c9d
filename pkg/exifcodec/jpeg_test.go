package exifcodec

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create %s: %v", p, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("encode %s: %v", p, err)
	}
	return p
}

func TestJPEG_NoExifBlock(t *testing.T) {
	p := writeJPEG(t, t.TempDir(), "IMG-20140430-WA0004.jpg")

	_, err := NewJPEG().GetTimestamps(p)
	if !errors.Is(err, ErrNoExif) {
		t.Fatalf("expected ErrNoExif, got %v", err)
	}
}

func TestJPEG_MissingFile(t *testing.T) {
	_, err := NewJPEG().GetTimestamps(filepath.Join(t.TempDir(), "missing.jpg"))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if errors.Is(err, ErrNoExif) {
		t.Fatalf("missing file must not look like a file without exif: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestJPEG_UpdateThenRead(t *testing.T) {
	p := writeJPEG(t, t.TempDir(), "IMG-20140430-WA0004.jpg")
	codec := NewJPEG()

	if err := codec.UpdateTimestamps(p, map[Attribute]string{DateTimeOriginal: "2014:04:30 10:30:00"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := codec.GetTimestamps(p)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[DateTimeOriginal] != "2014:04:30 10:30:00" {
		t.Fatalf("unexpected DateTimeOriginal %q", got[DateTimeOriginal])
	}
	if len(got) != 1 {
		t.Fatalf("expected only DateTimeOriginal, got %v", got)
	}
}

func TestJPEG_UpdateKeepsOtherTags(t *testing.T) {
	p := writeJPEG(t, t.TempDir(), "IMG-20140430-WA0004.jpg")
	codec := NewJPEG()

	if err := codec.UpdateTimestamps(p, map[Attribute]string{DateTime: "2015:01:02 03:04:05"}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := codec.UpdateTimestamps(p, map[Attribute]string{DateTimeOriginal: "2014:04:30 10:30:00"}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	got, err := codec.GetTimestamps(p)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[DateTime] != "2015:01:02 03:04:05" {
		t.Fatalf("DateTime was not preserved: %v", got)
	}
	if got[DateTimeOriginal] != "2014:04:30 10:30:00" {
		t.Fatalf("unexpected DateTimeOriginal: %v", got)
	}
}

func TestJPEG_GPSTimestampRoundTrip(t *testing.T) {
	p := writeJPEG(t, t.TempDir(), "a.jpg")
	codec := NewJPEG()

	if err := codec.UpdateTimestamps(p, map[Attribute]string{GPSTimeStamp: "2019:06:01 17:45:09"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := codec.GetTimestamps(p)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[GPSTimeStamp] != "2019:06:01 17:45:09" {
		t.Fatalf("unexpected GPSTimeStamp %q", got[GPSTimeStamp])
	}
}

func TestJPEG_UpdatePreservesModTime(t *testing.T) {
	p := writeJPEG(t, t.TempDir(), "a.jpg")
	mtime := time.Date(2016, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	if err := NewJPEG().UpdateTimestamps(p, map[Attribute]string{DateTimeOriginal: "2014:04:30 10:30:00"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime changed\n got: %v\nwant: %v", info.ModTime(), mtime)
	}
}

func TestJPEG_UpdateKeepsHardLinks(t *testing.T) {
	dir := t.TempDir()
	p := writeJPEG(t, dir, "IMG-20140430-WA0004.jpg")
	linked := filepath.Join(dir, "linked.jpg")
	if err := os.Link(p, linked); err != nil {
		t.Skipf("hard links not supported: %v", err)
	}

	before, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}

	if err := NewJPEG().UpdateTimestamps(p, map[Attribute]string{DateTimeOriginal: "2014:04:30 10:30:00"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(before, after) {
		t.Fatalf("update replaced the file instead of rewriting it")
	}

	got, err := NewJPEG().GetTimestamps(linked)
	if err != nil {
		t.Fatalf("get through link: %v", err)
	}
	if got[DateTimeOriginal] != "2014:04:30 10:30:00" {
		t.Fatalf("link does not see the update: %v", got)
	}
}

func TestJPEG_UpdateRejectsNonJPEG(t *testing.T) {
	p := filepath.Join(t.TempDir(), "note.jpg")
	if err := os.WriteFile(p, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewJPEG().UpdateTimestamps(p, map[Attribute]string{DateTimeOriginal: "2014:04:30 10:30:00"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestMemory_NoEntryIsNoExif(t *testing.T) {
	m := NewMemory()

	if _, err := m.GetTimestamps("a.jpg"); !errors.Is(err, ErrNoExif) {
		t.Fatalf("expected ErrNoExif, got %v", err)
	}

	m.Set("a.jpg", nil)
	got, err := m.GetTimestamps("a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty block, got %v", got)
	}
}

func TestFormatParse(t *testing.T) {
	want := time.Date(2014, 4, 30, 10, 30, 0, 0, time.UTC)

	s := Format(want)
	if s != "2014:04:30 10:30:00" {
		t.Fatalf("unexpected format %q", s)
	}
	got, err := Parse(s, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
