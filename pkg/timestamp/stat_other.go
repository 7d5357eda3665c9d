//go:build !linux && !darwin && !windows

package timestamp

import (
	"io/fs"
	"time"
)

func statTime(info fs.FileInfo, attr Attribute) (time.Time, error) {
	return time.Time{}, ErrAttributeUnavailable
}
