package timestamp

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/quidome/exify/pkg/exifcodec"
)

// ErrIncompleteSet is returned by Builder.Build when a required value is missing.
var ErrIncompleteSet = errors.New("incomplete timestamp set")

// Set holds every timestamp extracted for one file. Zero values are absent.
type Set struct {
	Filename time.Time `json:"filename,omitempty"`
	Created  time.Time `json:"created,omitempty"`
	Modified time.Time `json:"modified,omitempty"`

	// Exif is empty when the file carries no EXIF timestamp.
	Exif map[exifcodec.Attribute]time.Time `json:"exif,omitempty"`
}

// HasFilename reports whether a filename timestamp is present.
func (s Set) HasFilename() bool {
	return !s.Filename.IsZero()
}

// HasExif reports whether at least one EXIF timestamp is present.
func (s Set) HasExif() bool {
	return len(s.Exif) > 0
}

// Values collects all present timestamps in ascending order.
func (s Set) Values(includeFilename bool) []time.Time {
	values := make([]time.Time, 0, 3+len(s.Exif))
	if includeFilename && s.HasFilename() {
		values = append(values, s.Filename)
	}
	for _, t := range []time.Time{s.Created, s.Modified} {
		if !t.IsZero() {
			values = append(values, t)
		}
	}
	for _, attr := range exifcodec.Attributes() {
		if t, ok := s.Exif[attr]; ok && !t.IsZero() {
			values = append(values, t)
		}
	}

	sort.Slice(values, func(i, j int) bool {
		return values[i].Before(values[j])
	})
	return values
}

// Builder assembles a Set and validates it before use.
type Builder struct {
	set Set
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{set: Set{Exif: make(map[exifcodec.Attribute]time.Time)}}
}

func (b *Builder) Filename(t time.Time) *Builder {
	b.set.Filename = t
	return b
}

func (b *Builder) Created(t time.Time) *Builder {
	b.set.Created = t
	return b
}

func (b *Builder) Modified(t time.Time) *Builder {
	b.set.Modified = t
	return b
}

// Exif adds the given EXIF timestamps. A nil map is allowed.
func (b *Builder) Exif(values map[exifcodec.Attribute]time.Time) *Builder {
	for k, v := range values {
		b.set.Exif[k] = v
	}
	return b
}

// Build returns the Set. The filename and both filesystem timestamps are required.
func (b *Builder) Build() (Set, error) {
	var missing []string
	if b.set.Filename.IsZero() {
		missing = append(missing, "filename")
	}
	if b.set.Created.IsZero() {
		missing = append(missing, "created")
	}
	if b.set.Modified.IsZero() {
		missing = append(missing, "modified")
	}
	if len(missing) > 0 {
		return Set{}, fmt.Errorf("%w: missing %v", ErrIncompleteSet, missing)
	}

	out := b.set
	out.Exif = make(map[exifcodec.Attribute]time.Time, len(b.set.Exif))
	for k, v := range b.set.Exif {
		out.Exif[k] = v
	}
	return out, nil
}
