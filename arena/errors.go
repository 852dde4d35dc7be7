package arena

import "errors"

var (
	// ErrInvalidSize indicates a region size that is not a positive multiple of format.PageSize.
	ErrInvalidSize = errors.New("arena: size must be a positive multiple of the page size")

	// ErrMapFailed indicates the operating system declined to provide the region.
	ErrMapFailed = errors.New("arena: mapping failed")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)

// Process exit statuses used by MustNew.
const (
	ExitMapFailed   = 1
	ExitInvalidSize = 2
)

// ExitCode maps an initialization error to the status MustNew exits with.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidSize):
		return ExitInvalidSize
	default:
		return ExitMapFailed
	}
}
