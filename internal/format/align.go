package format

// pageMask is PageSize-1; PageSize is a power of two.
const pageMask = PageSize - 1

// IsPageMultiple reports whether n is a positive multiple of PageSize, the
// only arena sizes accepted at initialization.
func IsPageMultiple(n int) bool {
	return n > 0 && n&pageMask == 0
}
