//go:build windows

package timestamp

import (
	"fmt"
	"io/fs"
	"syscall"
	"time"
)

// On Windows the "change time" reported for a file is its creation time.
func statTime(info fs.FileInfo, attr Attribute) (time.Time, error) {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, fmt.Errorf("expected *syscall.Win32FileAttributeData, got %T", info.Sys())
	}

	switch attr {
	case ChangeTime, BirthTime:
		return time.Unix(0, data.CreationTime.Nanoseconds()), nil
	}
	return time.Time{}, ErrAttributeUnavailable
}
