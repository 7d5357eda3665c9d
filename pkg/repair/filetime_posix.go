//go:build !windows

package repair

import (
	"os"
	"time"
)

// setFileTime sets access and modification time. Creation time is left as is.
func setFileTime(path string, t time.Time) error {
	return os.Chtimes(path, t, t)
}
