// Package scenario loads and runs scripted allocator sessions.
//
// A scenario is a YAML document naming an arena size and a list of steps:
//
//	name: memtest
//	arena_size: 4096
//	steps:
//	  - {op: alloc, ptr: p1, size: 4}
//	  - {op: write, ptr: p1, data: abc}
//	  - {op: dump, free_nodes: 1, free_bytes: 4060}
//	  - {op: free, ptr: p1}
//	  - {op: free, ptr: p1, expect: fail}
//
// Run replays the steps against an alloc.Heap, prints each one with its
// expected and actual outcome, and collects every mismatch in a Result.
package scenario

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/arenakit/arena/alloc"
	"github.com/joshuapare/arenakit/internal/format"
)

// Op names a step kind.
type Op string

const (
	OpAlloc Op = "alloc" // reserve Size bytes and bind them to Ptr
	OpFree  Op = "free"  // release Ptr (+Offset)
	OpWrite Op = "write" // copy Data into Ptr's payload
	OpCheck Op = "check" // compare Ptr's payload prefix with Data
	OpDump  Op = "dump"  // print the free list, optionally asserting its shape
	OpNote  Op = "note"  // print Text
)

// Expect is the outcome a step is supposed to have.
type Expect string

const (
	ExpectOK   Expect = "ok"
	ExpectFail Expect = "fail"
)

// Step is one scripted operation.
type Step struct {
	Op     Op     `yaml:"op"`
	Ptr    string `yaml:"ptr,omitempty"`
	Size   int    `yaml:"size,omitempty"`
	Offset int    `yaml:"offset,omitempty"`
	Data   string `yaml:"data,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Expect Expect `yaml:"expect,omitempty"`

	// Dump assertions; nil means unchecked.
	FreeNodes *int `yaml:"free_nodes,omitempty"`
	FreeBytes *int `yaml:"free_bytes,omitempty"`
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	ArenaSize   int    `yaml:"arena_size"`
	Mode        string `yaml:"mode,omitempty"` // "strict" (default) or "sentinel"
	Steps       []Step `yaml:"steps"`
}

// Parse decodes and validates a scenario document. Unknown fields are
// rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario file at path. A scenario without a
// name is named after the file.
func Load(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if sc.Name == "" {
		base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
		sc.Name = strings.TrimSuffix(base, path.Ext(base))
	}
	return sc, nil
}

// Validate checks the arena size, the mode and every step, filling in
// default expectations.
func (sc *Scenario) Validate() error {
	if !format.IsPageMultiple(sc.ArenaSize) {
		return fmt.Errorf("%w: arena_size %d is not a positive multiple of %d", ErrInvalid, sc.ArenaSize, format.PageSize)
	}
	if _, err := alloc.ParseValidationMode(sc.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for i := range sc.Steps {
		st := &sc.Steps[i]
		if st.Expect == "" {
			st.Expect = ExpectOK
		}
		if err := st.validate(); err != nil {
			return &StepError{Index: i, Op: st.Op, Err: err}
		}
	}
	return nil
}

func (st *Step) validate() error {
	switch st.Expect {
	case ExpectOK, ExpectFail:
	default:
		return fmt.Errorf("%w: expect %q (want ok or fail)", ErrInvalid, st.Expect)
	}
	switch st.Op {
	case OpAlloc, OpFree, OpWrite, OpCheck:
		if st.Ptr == "" {
			return fmt.Errorf("%w: %s needs ptr", ErrInvalid, st.Op)
		}
	case OpDump, OpNote:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	return nil
}

// ValidationMode returns the scenario's validation mode.
func (sc *Scenario) ValidationMode() alloc.ValidationMode {
	m, _ := alloc.ParseValidationMode(sc.Mode)
	return m
}

//go:embed scenarios/*.yaml
var builtins embed.FS

// Builtin returns the embedded scenario with the given name.
func Builtin(name string) (*Scenario, error) {
	data, err := builtins.ReadFile("scenarios/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return Parse(data)
}

// Builtins lists the embedded scenario names.
func Builtins() []string {
	entries, _ := builtins.ReadDir("scenarios")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
