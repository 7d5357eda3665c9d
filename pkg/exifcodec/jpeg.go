package exifcodec

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// JPEG is the Codec for JPEG files.
type JPEG struct{}

// NewJPEG returns a JPEG codec.
func NewJPEG() *JPEG {
	return &JPEG{}
}

var readFields = map[Attribute]exif.FieldName{
	DateTime:          exif.DateTime,
	DateTimeOriginal:  exif.DateTimeOriginal,
	DateTimeDigitized: exif.DateTimeDigitized,
}

// GetTimestamps decodes the EXIF block of path and returns the timestamp tags it carries.
func (c *JPEG) GetTimestamps(path string) (map[Attribute]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		// Files without an APP1 segment land here as well.
		return nil, fmt.Errorf("%s: %w", path, ErrNoExif)
	}

	found := make(map[Attribute]string)
	for attr, field := range readFields {
		if s, ok := stringTag(x, field); ok {
			found[attr] = s
		}
	}
	if s, ok := gpsTimestamp(x); ok {
		found[GPSTimeStamp] = s
	}
	return found, nil
}

func stringTag(x *exif.Exif, field exif.FieldName) (string, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return "", false
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return "", false
	}
	return s, true
}

// gpsTimestamp joins GPSDateStamp ("2006:01:02") and the GPSTimeStamp
// rationals (hour, minute, second) into a single EXIF datetime string.
func gpsTimestamp(x *exif.Exif) (string, bool) {
	date, ok := stringTag(x, exif.GPSDateStamp)
	if !ok {
		return "", false
	}
	tag, err := x.Get(exif.GPSTimeStamp)
	if err != nil || tag.Count < 3 {
		return "", false
	}

	var hms [3]int
	for i := range hms {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return "", false
		}
		hms[i] = int(math.Floor(float64(num) / float64(den)))
	}
	return fmt.Sprintf("%s %02d:%02d:%02d", date, hms[0], hms[1], hms[2]), true
}
