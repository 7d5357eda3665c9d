//go:build linux

package timestamp

import (
	"fmt"
	"io/fs"
	"syscall"
	"time"
)

func statTime(info fs.FileInfo, attr Attribute) (time.Time, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, fmt.Errorf("expected *syscall.Stat_t, got %T", info.Sys())
	}

	if attr == ChangeTime {
		return time.Unix(stat.Ctim.Unix()), nil
	}
	return time.Time{}, ErrAttributeUnavailable
}
