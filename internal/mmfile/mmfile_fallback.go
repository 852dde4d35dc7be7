//go:build !unix && !windows

// Package mmfile provides platform-specific helpers for obtaining the
// arena's backing memory from the operating system.
package mmfile

import "fmt"

// MapAnon returns a zeroed heap slice when mmap is not available.
func MapAnon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
