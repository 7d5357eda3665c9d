package timestamp_test

import (
	"errors"
	"testing"
	"time"

	"github.com/quidome/exify/pkg/timestamp"
)

func TestFromFilename_Patterns(t *testing.T) {
	loc := time.FixedZone("TEST", 2*60*60)

	testCases := []struct {
		name string
		path string
		want time.Time
	}{
		{
			name: "whatsapp image",
			path: "/photos/IMG-20140430-WA0004.jpg",
			want: time.Date(2014, 4, 30, 0, 0, 0, 0, loc),
		},
		{
			name: "whatsapp video",
			path: "VID-20190101-WA0012.mp4",
			want: time.Date(2019, 1, 1, 0, 0, 0, 0, loc),
		},
		{
			name: "bare date",
			path: "20200716.jpeg",
			want: time.Date(2020, 7, 16, 0, 0, 0, 0, loc),
		},
		{
			name: "invalid leading run is skipped",
			path: "99999999-20210305.jpg",
			want: time.Date(2021, 3, 5, 0, 0, 0, 0, loc),
		},
		{
			name: "screenshot with time",
			path: "Screenshot 2020-07-16 19.25.40.png",
			want: time.Date(2020, 7, 16, 19, 25, 40, 0, loc),
		},
		{
			name: "screenshot date only",
			path: "Screenshot 2020-07-16.png",
			want: time.Date(2020, 7, 16, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := timestamp.FromFilename(tc.path, loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("unexpected timestamp\n got: %v\nwant: %v", got, tc.want)
			}
		})
	}
}

func TestFromFilename_WhatsAppBeatsScreenshot(t *testing.T) {
	got, err := timestamp.FromFilename("20140430 2020-07-16 19.25.40.jpg", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2014, 4, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFromFilename_NoPattern(t *testing.T) {
	for _, p := range []string{"holiday.jpg", "IMG-2014-WA0004.jpg", "1234567.jpg", "2020-13-45.jpg"} {
		_, err := timestamp.FromFilename(p, time.UTC)
		if !errors.Is(err, timestamp.ErrNoPatternMatch) {
			t.Fatalf("%s: expected ErrNoPatternMatch, got %v", p, err)
		}
	}
}

func TestFromFilename_ExtensionIgnored(t *testing.T) {
	// The 8 digits live in the extension only.
	_, err := timestamp.FromFilename("photo.20140430", time.UTC)
	if !errors.Is(err, timestamp.ErrNoPatternMatch) {
		t.Fatalf("expected ErrNoPatternMatch, got %v", err)
	}
}
