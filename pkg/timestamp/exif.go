package timestamp

import (
	"errors"
	"fmt"
	"time"

	"github.com/quidome/exify/pkg/exifcodec"
)

// ErrNoExifData is returned when a file has no EXIF block or no timestamp tag in it.
// Callers treat it as an expected condition.
var ErrNoExifData = errors.New("no exif timestamps found")

// FromExif returns the EXIF timestamps of path keyed by attribute. Values that
// do not parse as EXIF datetimes are skipped.
//
// The DateTime tags are naive and read in loc. GPS date and time are UTC.
func FromExif(path string, codec exifcodec.Codec, loc *time.Location) (map[exifcodec.Attribute]time.Time, error) {
	raw, err := codec.GetTimestamps(path)
	if err != nil {
		if errors.Is(err, exifcodec.ErrNoExif) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoExifData)
		}
		return nil, err
	}

	found := make(map[exifcodec.Attribute]time.Time)
	for _, attr := range exifcodec.Attributes() {
		s, ok := raw[attr]
		if !ok || s == "" {
			continue
		}
		in := loc
		if attr == exifcodec.GPSTimeStamp {
			in = time.UTC
		}
		t, err := exifcodec.Parse(s, in)
		if err != nil {
			continue
		}
		found[attr] = t
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoExifData)
	}
	return found, nil
}
