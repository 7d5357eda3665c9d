// Package exifcodec reads and writes the EXIF timestamp tags of image files.
//
// Only the four timestamp attributes are exposed. Values cross the package
// boundary as EXIF datetime strings ("2006:01:02 15:04:05").
package exifcodec

import (
	"errors"
	"time"
)

// Layout is the EXIF datetime format.
const Layout = "2006:01:02 15:04:05"

// ErrNoExif is returned when a file carries no EXIF block at all.
var ErrNoExif = errors.New("no exif data")

// Attribute names an EXIF timestamp tag.
type Attribute string

const (
	DateTime          Attribute = "DateTime"
	DateTimeOriginal  Attribute = "DateTimeOriginal"
	DateTimeDigitized Attribute = "DateTimeDigitized"
	GPSTimeStamp      Attribute = "GPSTimeStamp"
)

// DefaultAttribute is the tag written when a file has no EXIF timestamp.
const DefaultAttribute = DateTimeOriginal

// Attributes lists the recognized timestamp attributes in lookup order.
func Attributes() []Attribute {
	return []Attribute{DateTime, DateTimeOriginal, DateTimeDigitized, GPSTimeStamp}
}

// Valid reports whether a is one of the recognized timestamp attributes.
func (a Attribute) Valid() bool {
	switch a {
	case DateTime, DateTimeOriginal, DateTimeDigitized, GPSTimeStamp:
		return true
	}
	return false
}

// Codec gets and updates EXIF timestamp tags of a file.
//
// GetTimestamps returns ErrNoExif when the file has no EXIF block. A block
// without timestamp tags yields an empty map and a nil error.
//
// UpdateTimestamps writes only the supplied attributes and leaves every
// other tag untouched.
type Codec interface {
	GetTimestamps(path string) (map[Attribute]string, error)
	UpdateTimestamps(path string, values map[Attribute]string) error
}

// Format renders t in the EXIF datetime format.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse parses an EXIF datetime string in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(Layout, s, loc)
}
