//go:build windows

package mmfile

import "fmt"

// MapAnon returns a zeroed heap slice; the arena only needs a private
// writable region, not a file view.
func MapAnon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
