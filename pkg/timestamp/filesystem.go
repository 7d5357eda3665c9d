package timestamp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"
)

// ErrAttributeUnavailable is returned when the platform does not expose the
// requested filesystem time attribute.
var ErrAttributeUnavailable = errors.New("file time attribute unavailable")

// Kind selects which filesystem timestamp to read.
type Kind int

const (
	Created Kind = iota
	Modified
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Attribute is a raw time attribute of a file as reported by the OS.
type Attribute int

const (
	ModTime Attribute = iota
	ChangeTime
	BirthTime
)

func (a Attribute) String() string {
	switch a {
	case ModTime:
		return "mtime"
	case ChangeTime:
		return "ctime"
	case BirthTime:
		return "birthtime"
	}
	return fmt.Sprintf("Attribute(%d)", int(a))
}

// Platform selects the attribute mapping for a family of operating systems.
type Platform int

const (
	Linux Platform = iota
	Mac
	Windows
)

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case Mac:
		return "mac"
	case Windows:
		return "windows"
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

// PlatformFor maps a GOOS value to a Platform. Everything that is neither
// darwin nor windows is treated like Linux.
func PlatformFor(goos string) Platform {
	switch goos {
	case "darwin", "ios":
		return Mac
	case "windows":
		return Windows
	}
	return Linux
}

var currentPlatform = PlatformFor(runtime.GOOS)

// CurrentPlatform returns the platform the binary runs on.
func CurrentPlatform() Platform {
	return currentPlatform
}

// AttributeMap tells which raw attribute supplies each Kind.
type AttributeMap struct {
	Created  Attribute
	Modified Attribute
}

var attributeMaps = map[Platform]AttributeMap{
	Mac:     {Created: BirthTime, Modified: ModTime},
	Windows: {Created: ChangeTime, Modified: ModTime},
	// Linux has no reliable creation time; it is aliased to mtime.
	Linux: {Created: ModTime, Modified: ModTime},
}

// AttributeMapFor returns the static mapping of p.
func AttributeMapFor(p Platform) AttributeMap {
	if m, ok := attributeMaps[p]; ok {
		return m
	}
	return attributeMaps[Linux]
}

// Attribute returns the raw attribute backing k.
func (m AttributeMap) Attribute(k Kind) Attribute {
	if k == Created {
		return m.Created
	}
	return m.Modified
}

// FromFileSystem reads the created or modified time of path. Symlinks are
// not followed.
func FromFileSystem(path string, which Kind, attrs AttributeMap) (time.Time, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return fileTime(info, attrs.Attribute(which))
}

func fileTime(info fs.FileInfo, attr Attribute) (time.Time, error) {
	if attr == ModTime {
		return info.ModTime(), nil
	}
	t, err := statTime(info, attr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s of %s: %w", attr, info.Name(), err)
	}
	return t, nil
}
