// Package verify provides invariant checks for an arena managed by package
// alloc. It is used by tests and by the scenario runner to confirm that
// every operation leaves the arena in a consistent state.
//
// # Quick Start
//
//	if err := verify.AllInvariants(fa); err != nil {
//	    t.Fatalf("invariants violated: %v", err)
//	}
//
// # Checks
//
// FreeList walks the free list:
//   - the walk terminates (no cycles) and every node is a free header
//   - nodes lie inside the arena and no offset appears twice
//   - the report's head and free-byte total agree with the nodes
//
// Extents checks every free and live block:
//   - blocks lie inside the arena and do not overlap
//   - each header decodes with the kind and size the allocator recorded
//
// Accounting checks the byte budget:
//
//	free payload + live capacity + headers + dead bytes == arena size
//
// # ValidationError
//
// All checks return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string         // Check that failed (e.g. "Extents")
//	    Message string         // Human-readable description
//	    Offset  int            // Arena offset involved (-1 if N/A)
//	    Details map[string]any // Additional context
//	}
//
// Example:
//
//	err := verify.Accounting(fa)
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("total=%d arena=%d\n", verr.Details["total"], verr.Details["arena_size"])
//	}
//
// # Related Packages
//
//   - github.com/joshuapare/arenakit/arena/alloc: The allocator under test
//   - github.com/joshuapare/arenakit/internal/format: Header layout
package verify
