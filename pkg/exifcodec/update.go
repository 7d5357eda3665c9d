package exifcodec

import (
	"bytes"
	"fmt"
	"os"
	"time"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

const (
	ifdRoot = "IFD"
	ifdExif = "IFD/Exif"
	ifdGPS  = "IFD/GPSInfo"
)

var writeIfds = map[Attribute]string{
	DateTime:          ifdRoot,
	DateTimeOriginal:  ifdExif,
	DateTimeDigitized: ifdExif,
	GPSTimeStamp:      ifdGPS,
}

// UpdateTimestamps rewrites the given timestamp tags of path.
//
// The new image is encoded in memory and written back into the same file, so
// the inode, its hard links and its ownership stay as they were. The
// modification time is restored afterwards so an EXIF update alone does not
// move the filesystem timestamp.
func (c *JPEG) UpdateTimestamps(path string, values map[Attribute]string) error {
	if len(values) == 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	parsed, err := jpegstructure.NewJpegMediaParser().ParseBytes(data)
	if err != nil {
		return fmt.Errorf("parse jpeg %s: %w", path, err)
	}
	sl, ok := parsed.(*jpegstructure.SegmentList)
	if !ok {
		return fmt.Errorf("parse jpeg %s: unexpected media context %T", path, parsed)
	}

	rootIb, err := rootBuilder(sl)
	if err != nil {
		return fmt.Errorf("exif builder %s: %w", path, err)
	}

	for attr, value := range values {
		if err := setTag(rootIb, attr, value); err != nil {
			return fmt.Errorf("set %s on %s: %w", attr, path, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("encode exif %s: %w", path, err)
	}

	if err := rewriteFile(path, sl); err != nil {
		return err
	}

	if err := os.Chtimes(path, time.Time{}, info.ModTime()); err != nil {
		return fmt.Errorf("restore times %s: %w", path, err)
	}
	return nil
}

func rootBuilder(sl *jpegstructure.SegmentList) (*exifv3.IfdBuilder, error) {
	for _, s := range sl.Segments() {
		if s.IsExif() {
			return sl.ConstructExifBuilder()
		}
	}

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, err
	}
	ti := exifv3.NewTagIndex()
	return exifv3.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

func setTag(rootIb *exifv3.IfdBuilder, attr Attribute, value string) error {
	ifdPath, ok := writeIfds[attr]
	if !ok {
		return fmt.Errorf("unsupported attribute %q", attr)
	}
	ib, err := exifv3.GetOrCreateIbFromRootIb(rootIb, ifdPath)
	if err != nil {
		return err
	}

	if attr != GPSTimeStamp {
		return ib.SetStandardWithName(string(attr), value)
	}

	t, err := time.Parse(Layout, value)
	if err != nil {
		return err
	}
	if err := ib.SetStandardWithName("GPSDateStamp", t.Format("2006:01:02")); err != nil {
		return err
	}
	return ib.SetStandardWithName("GPSTimeStamp", []exifcommon.Rational{
		{Numerator: uint32(t.Hour()), Denominator: 1},
		{Numerator: uint32(t.Minute()), Denominator: 1},
		{Numerator: uint32(t.Second()), Denominator: 1},
	})
}

func rewriteFile(path string, sl *jpegstructure.SegmentList) error {
	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
