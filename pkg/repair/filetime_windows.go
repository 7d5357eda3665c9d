//go:build windows

package repair

import (
	"fmt"
	"syscall"
	"time"
)

// setFileTime sets creation, access and write time through a file handle.
func setFileTime(path string, t time.Time) error {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	h, err := syscall.CreateFile(
		p,
		syscall.FILE_WRITE_ATTRIBUTES,
		syscall.FILE_SHARE_READ|syscall.FILE_SHARE_WRITE,
		nil,
		syscall.OPEN_EXISTING,
		syscall.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer syscall.Close(h)

	ft := syscall.NsecToFiletime(t.UnixNano())
	if err := syscall.SetFileTime(h, &ft, &ft, &ft); err != nil {
		return fmt.Errorf("set file time %s: %w", path, err)
	}
	return nil
}
