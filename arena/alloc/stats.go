package alloc

// Stats holds allocator counters.
//
// AllocCalls and FreeCalls count calls that reach an open allocator,
// including ones that fail validation. Calls on a closed allocator and
// Free(Nil) are not counted.
type Stats struct {
	AllocCalls     int   `json:"alloc_calls"`     // Alloc() calls on an open allocator
	FreeCalls      int   `json:"free_calls"`      // Free() calls with a non-nil pointer on an open allocator
	Splits         int   `json:"splits"`          // Allocations that carved a remainder block
	Splices        int   `json:"splices"`         // Allocations that consumed a whole block
	FailedAllocs   int   `json:"failed_allocs"`   // Allocations rejected with ErrNoSpace
	InvalidFrees   int   `json:"invalid_frees"`   // Frees rejected with ErrInvalidFree
	BytesAllocated int64 `json:"bytes_allocated"` // Requested payload bytes handed out
	BytesFreed     int64 `json:"bytes_freed"`     // Payload bytes returned to the list
	DeadBytes      int   `json:"dead_bytes"`      // Exact-fit slack lost on free
	LiveBlocks     int   `json:"live_blocks"`     // Outstanding allocations
}

// Stats returns a copy of the counters.
func (fa *Allocator) Stats() Stats {
	s := fa.stats
	s.LiveBlocks = len(fa.live)
	return s
}
