// Package engine executes linked trigger images: starting at the entry, it
// runs each instruction's actions when its conditions hold, then follows its
// next-pointer, until a next-pointer of 0.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcorbin/gotrig/internal/mem"
	"github.com/jcorbin/gotrig/internal/panicerr"
	"github.com/jcorbin/gotrig/internal/trig"
)

// Engine runs a trigger image over a flat cell memory.
type Engine struct {
	logfn func(mess string, args ...interface{})

	mem mem.Cells
	img *trig.Image

	pc        uint
	steps     uint
	stepLimit uint
}

// New creates an engine.
func New(opts ...Option) *Engine {
	var e Engine
	for _, opt := range defaults {
		opt.apply(&e)
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&e)
		}
	}
	return &e
}

// Load stores img into memory and resets the program counter to its entry.
func (e *Engine) Load(img *trig.Image) error {
	if err := e.mem.Stor(img.Base, img.Words...); err != nil {
		return err
	}
	e.img = img
	e.pc = img.Entry
	e.steps = 0
	return nil
}

// Run executes the loaded image until it halts, faults, exceeds its step
// limit, or ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	err := panicerr.Do("engine", func() { e.run(ctx) })
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

// Steps returns the number of instructions executed since Load.
func (e *Engine) Steps() uint { return e.steps }

// Value returns the current content of the cell at a.
func (e *Engine) Value(a trig.Addressable) (mem.Word, error) {
	addr, ok := trig.Address(a)
	if !ok {
		return 0, fmt.Errorf("%v has no address", a)
	}
	return e.mem.Load(addr)
}

// Values returns the current content of the given variables.
func (e *Engine) Values(vars ...*trig.Var) ([]mem.Word, error) {
	vals := make([]mem.Word, len(vars))
	for i, v := range vars {
		val, err := e.Value(v)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}
	return vals, nil
}

// Snapshot returns the loaded image with its cells replaced by their current
// content.
func (e *Engine) Snapshot() (*trig.Image, error) {
	if e.img == nil {
		return nil, errNoImage
	}
	words := make([]mem.Word, len(e.img.Words))
	if err := e.mem.LoadInto(e.img.Base, words); err != nil {
		return nil, err
	}
	return e.img.WithWords(words), nil
}

func (e *Engine) logf(mess string, args ...interface{}) {
	if e.logfn != nil {
		e.logfn(mess, args...)
	}
}

func (e *Engine) halt(err error) {
	if err == nil {
		e.logf("halt after %v steps", e.steps)
	} else {
		e.logf("halt error: %v", err)
	}
	panic(haltError{err})
}

func (e *Engine) haltif(err error) {
	if err != nil {
		e.halt(err)
	}
}

func (e *Engine) run(ctx context.Context) {
	if e.img == nil {
		e.halt(errNoImage)
	}
	for e.pc != 0 {
		e.haltif(ctx.Err())
		e.step()
	}
	e.halt(nil)
}

func (e *Engine) step() {
	at := e.pc
	if e.stepLimit != 0 && e.steps >= e.stepLimit {
		e.halt(fmt.Errorf("%w after %v steps @%v", ErrStepLimit, e.steps, at))
	}
	e.steps++

	ncond, nact, ok := trig.DecodeHeader(e.load(at + trig.HeaderCell))
	if !ok {
		e.halt(FaultError{at, "jump into non-instruction"})
	}

	run := true
	for i := 0; i < ncond && run; i++ {
		op, addr, val := e.field(at, i)
		run = e.test(at, trig.CondOp(op), e.load(e.addr(at, addr)), val)
	}
	if run {
		for i := 0; i < nact; i++ {
			op, dest, val := e.field(at, ncond+i)
			e.act(at, op, dest, val)
		}
	}

	next := e.load(at + trig.NextCell)
	if e.logfn != nil {
		e.logf("exec @%v %v run:%v -> @%v", at, e.img.Labels[at], run, next)
	}
	if next < 0 {
		e.halt(FaultError{at, fmt.Sprintf("negative next-pointer %v", next)})
	}
	e.pc = uint(next)
}

func (e *Engine) field(at uint, i int) (op, a, v mem.Word) {
	base := at + uint(trig.FieldOffset(i))
	return e.load(base), e.load(base + 1), e.load(base + 2)
}

func (e *Engine) test(at uint, op trig.CondOp, have, want mem.Word) bool {
	switch op {
	case trig.CondExactly:
		return have == want
	case trig.CondAtLeast:
		return have >= want
	case trig.CondAtMost:
		return have <= want
	}
	e.halt(FaultError{at, fmt.Sprintf("invalid condition %v", op)})
	return false
}

func (e *Engine) act(at uint, code, dest, val mem.Word) {
	op := trig.ActionOp(code)
	addr := e.addr(at, dest)
	if op.Indirect() {
		val = e.load(e.addr(at, val))
	}
	switch op {
	case trig.ActSetTo, trig.ActCopy:
		e.stor(addr, val)
	case trig.ActAdd, trig.ActAddFrom:
		e.stor(addr, e.load(addr)+val)
	case trig.ActSubtract, trig.ActSubtractFrom:
		e.stor(addr, e.load(addr)-val)
	default:
		e.halt(FaultError{at, fmt.Sprintf("invalid action %v", op)})
	}
}

// addr checks a cell address operand; the null cell is never accessed.
func (e *Engine) addr(at uint, a mem.Word) uint {
	if a <= 0 {
		e.halt(FaultError{at, fmt.Sprintf("access to null cell @%v", a)})
	}
	return uint(a)
}

func (e *Engine) load(addr uint) mem.Word {
	val, err := e.mem.Load(addr)
	e.haltif(err)
	return val
}

func (e *Engine) stor(addr uint, val mem.Word) {
	e.haltif(e.mem.Stor(addr, val))
}

var (
	// ErrStepLimit is returned when a run exceeds its step limit, as a
	// non-terminating program does.
	ErrStepLimit = errors.New("step limit exceeded")

	errNoImage = errors.New("no image loaded")
)

// FaultError reports an instruction the engine cannot execute.
type FaultError struct {
	Addr   uint
	Reason string
}

func (fe FaultError) Error() string { return fmt.Sprintf("fault @%v: %v", fe.Addr, fe.Reason) }

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }
