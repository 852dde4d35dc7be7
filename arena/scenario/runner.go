package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/arenakit/arena/alloc"
	"github.com/joshuapare/arenakit/arena/printer"
	"github.com/joshuapare/arenakit/arena/verify"
	"github.com/joshuapare/arenakit/internal/logger"
)

// Options controls a run.
type Options struct {
	// Printer formats dump steps.
	// Default: printer.DefaultOptions()
	Printer printer.Options

	// CheckInvariants runs verify.AllInvariants after every step when the
	// heap supports inspection. A violation is recorded as a mismatch.
	// Default: true
	CheckInvariants bool

	// Logger receives one debug record per step.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns the options arenactl uses.
func DefaultOptions() Options {
	return Options{
		Printer:         printer.DefaultOptions(),
		CheckInvariants: true,
	}
}

// Mismatch records a step whose outcome differed from its expectation.
type Mismatch struct {
	Index    int    `json:"index"` // zero-based
	Op       Op     `json:"op"`
	Expected Expect `json:"expected"`
	Actual   Expect `json:"actual"`
	Detail   string `json:"detail"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %d (%s): expected %s, got %s: %s", m.Index+1, m.Op, m.Expected, m.Actual, m.Detail)
}

// Result summarizes a run.
type Result struct {
	Name       string         `json:"name"`
	Steps      int            `json:"steps"`
	Mismatches []Mismatch     `json:"mismatches"`
	Pointers   map[string]int `json:"pointers"`
}

// OK reports whether every step behaved as expected.
func (r *Result) OK() bool { return len(r.Mismatches) == 0 }

// Open creates the allocator a scenario asks for: its arena size, in its
// mode unless opts overrides it. The caller closes it.
func Open(sc *Scenario, opts *alloc.Options) (*alloc.Allocator, error) {
	o := alloc.DefaultOptions()
	o.Validation = sc.ValidationMode()
	if opts != nil {
		o = *opts
	}
	return alloc.Init(sc.ArenaSize, &o)
}

type runner struct {
	h    alloc.Heap
	w    io.Writer
	opts Options
	log  *slog.Logger
	ptrs map[string]alloc.Ptr
	res  *Result
}

// Run replays sc against h, writing a line per step to w. Outcome
// mismatches are collected in the Result; a step that cannot be run at
// all (an unknown op or pointer name, a failed write to w) stops the run
// with a *StepError.
func Run(h alloc.Heap, sc *Scenario, w io.Writer, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = logger.L
	}
	r := &runner{
		h:    h,
		w:    w,
		opts: opts,
		log:  opts.Logger,
		ptrs: make(map[string]alloc.Ptr),
		res: &Result{
			Name:       sc.Name,
			Mismatches: []Mismatch{},
			Pointers:   make(map[string]int),
		},
	}

	if sc.Name != "" {
		if _, err := fmt.Fprintf(w, "== %s (arena %d bytes)\n", sc.Name, sc.ArenaSize); err != nil {
			return r.res, err
		}
	}
	for i, st := range sc.Steps {
		if st.Expect == "" {
			st.Expect = ExpectOK
		}
		if err := r.step(i, st); err != nil {
			return r.res, &StepError{Index: i, Op: st.Op, Err: err}
		}
		r.res.Steps++
	}
	for name, p := range r.ptrs {
		r.res.Pointers[name] = int(p)
	}

	status := "ok"
	if !r.res.OK() {
		status = fmt.Sprintf("%d mismatch(es)", len(r.res.Mismatches))
	}
	_, err := fmt.Fprintf(w, "== %d steps, %s\n", r.res.Steps, status)
	return r.res, err
}

func (r *runner) step(i int, st Step) error {
	var (
		actual = ExpectOK
		detail string
		err    error
	)

	switch st.Op {
	case OpNote:
		_, err = fmt.Fprintln(r.w, st.Text)

	case OpAlloc:
		var p alloc.Ptr
		p, _, err = r.h.Alloc(st.Size)
		if err != nil {
			actual, detail = ExpectFail, err.Error()
			r.ptrs[st.Ptr] = alloc.Nil
			_, err = fmt.Fprintf(r.w, "Tried to allocate %d bytes as %s: %v\n", st.Size, st.Ptr, detail)
		} else {
			r.ptrs[st.Ptr] = p
			detail = "allocated at " + alloc.ID(int(p))
			_, err = fmt.Fprintf(r.w, "Allocated %d bytes at %s (%s)\n", st.Size, alloc.ID(int(p)), st.Ptr)
		}

	case OpFree:
		p, ok := r.ptrs[st.Ptr]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPtr, st.Ptr)
		}
		target := p + alloc.Ptr(st.Offset)
		label := st.Ptr
		if st.Offset != 0 {
			label = fmt.Sprintf("%s%+d", st.Ptr, st.Offset)
		}
		if ferr := r.h.Free(target); ferr != nil {
			actual, detail = ExpectFail, ferr.Error()
			_, err = fmt.Fprintf(r.w, "Free %s (%s) failed: %v\n", label, alloc.ID(int(target)), ferr)
		} else {
			detail = "freed " + alloc.ID(int(target))
			_, err = fmt.Fprintf(r.w, "Freed %s (%s)\n", label, alloc.ID(int(target)))
		}

	case OpWrite:
		payload, perr := r.payload(st)
		if errors.Is(perr, ErrUnknownPtr) {
			return perr
		}
		switch {
		case perr != nil:
			actual, detail = ExpectFail, perr.Error()
		case len(st.Data) > len(payload):
			actual, detail = ExpectFail, fmt.Sprintf("%d bytes do not fit in %d", len(st.Data), len(payload))
		default:
			copy(payload, st.Data)
			detail = fmt.Sprintf("wrote %q", st.Data)
		}

	case OpCheck:
		payload, perr := r.payload(st)
		if errors.Is(perr, ErrUnknownPtr) {
			return perr
		}
		switch {
		case perr != nil:
			actual, detail = ExpectFail, perr.Error()
		case len(payload) < len(st.Data) || !bytes.Equal(payload[:len(st.Data)], []byte(st.Data)):
			actual, detail = ExpectFail, fmt.Sprintf("%s changed to %q", st.Ptr, payload[:min(len(payload), len(st.Data))])
		default:
			detail = fmt.Sprintf("%s holds %q", st.Ptr, st.Data)
		}
		if actual == ExpectFail {
			_, err = fmt.Fprintf(r.w, "Check %s: %s\n", st.Ptr, detail)
		}

	case OpDump:
		rep, derr := r.h.Dump()
		if derr != nil {
			actual, detail = ExpectFail, derr.Error()
			break
		}
		if err = printer.Print(r.w, rep, r.opts.Printer); err != nil {
			return err
		}
		var problems []string
		if st.FreeNodes != nil && *st.FreeNodes != len(rep.Nodes) {
			problems = append(problems, fmt.Sprintf("free_nodes %d, want %d", len(rep.Nodes), *st.FreeNodes))
		}
		if st.FreeBytes != nil && *st.FreeBytes != rep.FreeBytes {
			problems = append(problems, fmt.Sprintf("free_bytes %d, want %d", rep.FreeBytes, *st.FreeBytes))
		}
		if len(problems) > 0 {
			actual, detail = ExpectFail, fmt.Sprint(problems)
		} else {
			detail = fmt.Sprintf("%d nodes, %d bytes", len(rep.Nodes), rep.FreeBytes)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	if err != nil {
		return err
	}

	r.log.Debug("scenario step", "index", i, "op", string(st.Op), "expect", string(st.Expect), "actual", string(actual))
	if actual != st.Expect {
		r.mismatch(i, st.Op, st.Expect, actual, detail)
	}
	r.checkInvariants(i, st)
	return nil
}

// payload resolves st.Ptr and returns its live payload from st.Offset on.
func (r *runner) payload(st Step) ([]byte, error) {
	p, ok := r.ptrs[st.Ptr]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPtr, st.Ptr)
	}
	b, err := r.h.Payload(p)
	if err != nil {
		return nil, err
	}
	if st.Offset < 0 || st.Offset > len(b) {
		return nil, fmt.Errorf("offset %d outside %d-byte payload", st.Offset, len(b))
	}
	return b[st.Offset:], nil
}

func (r *runner) mismatch(i int, op Op, expected, actual Expect, detail string) {
	m := Mismatch{Index: i, Op: op, Expected: expected, Actual: actual, Detail: detail}
	r.res.Mismatches = append(r.res.Mismatches, m)
	r.log.Warn("scenario mismatch", "index", i, "op", string(op), "detail", detail)
	_, _ = fmt.Fprintf(r.w, "MISMATCH %s\n", m)
}

func (r *runner) checkInvariants(i int, st Step) {
	if !r.opts.CheckInvariants {
		return
	}
	in, ok := r.h.(verify.Inspector)
	if !ok {
		return
	}
	if err := verify.AllInvariants(in); err != nil {
		r.mismatch(i, st.Op, ExpectOK, ExpectFail, "invariant: "+err.Error())
	}
}
