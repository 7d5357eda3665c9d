package timestamp

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNoPatternMatch is returned when a file name carries no recognizable date.
var ErrNoPatternMatch = errors.New("no date pattern in file name")

var (
	reWhatsApp       = regexp.MustCompile(`\d{8}`)
	reScreenshotDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	reScreenshotTime = regexp.MustCompile(`\d{2}\.\d{2}\.\d{2}`)
)

type filenameStrategy func(stem string, loc *time.Location) (time.Time, bool)

// strategies in priority order.
var strategies = []filenameStrategy{
	whatsappTimestamp,
	screenshotTimestamp,
}

// FromFilename parses a timestamp out of the base name of path (without
// extension). Naive values are interpreted in loc; nil means time.Local.
func FromFilename(path string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	for _, strategy := range strategies {
		if t, ok := strategy(stem, loc); ok {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %w", base, ErrNoPatternMatch)
}

// whatsappTimestamp matches names like IMG-20140430-WA0004. Every 8-digit run
// is tried so a leading counter that is not a date does not hide a later one.
func whatsappTimestamp(stem string, loc *time.Location) (time.Time, bool) {
	for _, m := range reWhatsApp.FindAllString(stem, -1) {
		if t, err := time.ParseInLocation("20060102", m, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// screenshotTimestamp matches names like "Screenshot 2020-07-16 19.25.40".
// The time of day is optional.
func screenshotTimestamp(stem string, loc *time.Location) (time.Time, bool) {
	m := reScreenshotDate.FindString(stem)
	if m == "" {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation("2006-01-02", m, loc)
	if err != nil {
		return time.Time{}, false
	}

	tm := reScreenshotTime.FindString(stem)
	if tm == "" {
		return date, true
	}
	clock, err := time.Parse("15.04.05", tm)
	if err != nil {
		return date, true
	}
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc), true
}
