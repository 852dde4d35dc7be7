// Package arena owns the single fixed-size memory region an allocator
// manages.
//
// # Overview
//
// An Arena is obtained once from the operating system as one private,
// zero-filled anonymous mapping whose size is a positive multiple of
// format.PageSize (4 KiB). It never grows or shrinks; Close unmaps it.
//
//	a, err := arena.New(4096)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
// MustNew is the initialization path for drivers that cannot continue
// without memory: it terminates the process with ExitMapFailed when the OS
// refuses the mapping and ExitInvalidSize when the size is not a page
// multiple.
//
// # Thread Safety
//
// Arena instances are not thread-safe. The allocator layered on top
// (package alloc) assumes a single owner.
//
// # Related Packages
//
//   - github.com/joshuapare/arenakit/arena/alloc: First-fit free-list allocator
//   - github.com/joshuapare/arenakit/arena/verify: Invariant checks
//   - github.com/joshuapare/arenakit/internal/mmfile: OS mapping helpers
package arena
