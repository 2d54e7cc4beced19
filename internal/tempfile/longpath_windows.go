//go:build windows

package tempfile

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// LongPath expands legacy 8.3 short names (C:\Users\RUNNER~1\...) into their
// canonical long form.
func LongPath(path string) (string, error) {
	src, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return "", err
	}
	buf := make([]uint16, windows.MAX_PATH)
	for {
		n, err := windows.GetLongPathName(src, &buf[0], uint32(len(buf)))
		if err != nil {
			return "", err
		}
		if int(n) <= len(buf) {
			return filepath.Clean(windows.UTF16ToString(buf[:n])), nil
		}
		buf = make([]uint16, n)
	}
}
