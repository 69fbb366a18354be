package fptr

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/record"
	"github.com/jcorbin/gotrig/internal/trig"
)

// PtrLayout is the record layout of a function pointer: the entry of an
// indirect caller, and the address of that caller's final next-pointer cell.
var PtrLayout = record.NewLayout("fptr", "entry", "cont")

// State is what is statically known about a function pointer's contents.
type State uint8

// Pointer states.
const (
	Uninitialized State = iota
	Bound
)

func (st State) String() string {
	switch st {
	case Uninitialized:
		return "uninitialized"
	case Bound:
		return "bound"
	}
	return fmt.Sprintf("State(%d)", uint8(st))
}

// FuncPtr is a function pointer of fixed prototype, stored in memory so that
// its target may change at run time.
type FuncPtr struct {
	s      *Session
	name   string
	argn   int
	retn   int
	rec    *record.Record
	state  State
	target *Func
}

func (s *Session) newFuncPtr(name string, argn, retn int) *FuncPtr {
	if argn < 0 || retn < 0 {
		panic(trig.Contractf(name, "non-negative arity", "prototype (%v, %v)", argn, retn))
	}
	return &FuncPtr{s: s, name: name, argn: argn, retn: retn}
}

// NewFuncPtr allocates an unbound function pointer; it must be bound before
// it is invoked.
func (s *Session) NewFuncPtr(name string, argn, retn int) *FuncPtr {
	p := s.newFuncPtr(name, argn, retn)
	p.rec = PtrLayout.New(s.as, name)
	s.logf("new %v", p)
	return p
}

// NewFuncPtrTo allocates a function pointer whose cells initially hold f's
// indirect caller, without emitting any instruction.
func (s *Session) NewFuncPtrTo(name string, argn, retn int, f *Func) *FuncPtr {
	p := s.newFuncPtr(name, argn, retn)
	entry, cont := p.resolve(f)
	p.rec = PtrLayout.New(s.as, name, entry, cont)
	p.state, p.target = Bound, f
	s.logf("new %v -> %v", p, f)
	return p
}

func (p *FuncPtr) String() string {
	return fmt.Sprintf("%v(%v)%v", p.name, p.argn, p.retn)
}

// Name returns the pointer's name.
func (p *FuncPtr) Name() string { return p.name }

// Proto returns the number of arguments and return values.
func (p *FuncPtr) Proto() (argn, retn int) { return p.argn, p.retn }

// State returns the pointer's state at the current point of compilation.
func (p *FuncPtr) State() State { return p.state }

// Target returns the function most recently bound at compile time, or nil.
// The target at run time may differ, depending on the path taken.
func (p *FuncPtr) Target() *Func { return p.target }

// Cells returns the entry and continuation cells.
func (p *FuncPtr) Cells() (entry, cont *trig.Var) {
	return p.rec.Field("entry"), p.rec.Field("cont")
}

// Record returns the record holding the pointer.
func (p *FuncPtr) Record() *record.Record { return p.rec }

func (p *FuncPtr) check(f *Func) {
	if f == nil {
		panic(trig.Contractf(p.String(), "non-nil function", "no function given"))
	}
	if f.s != p.s {
		panic(trig.Contractf(p.String(), "same session", "%v defined in another session", f))
	}
	if f.argn != p.argn || f.retn != p.retn {
		panic(trig.Contractf(p.String(), "prototype",
			"cannot refer to %v: expects %v arguments and %v return values",
			f, p.argn, p.retn))
	}
}

// resolve returns the cell values referring to f, compiling it and building
// its indirect caller as needed.
func (p *FuncPtr) resolve(f *Func) (entry, cont trig.Operand) {
	p.check(f)
	f.Compile()
	c := p.s.indirectCaller(f)
	return trig.Addr(c.start, 0), trig.Addr(c.end, trig.NextCell)
}

// Bind emits an instruction storing f's indirect caller into the pointer.
// Nothing is emitted, and the pointer is left unchanged, when f's prototype
// differs.
func (p *FuncPtr) Bind(f *Func) {
	entry, cont := p.resolve(f)
	p.rec.Assign(p.s.as, entry, cont)
	p.state, p.target = Bound, f
	p.s.logf("bind %v -> %v", p, f)
}

// CopyFrom emits an instruction copying q's cells into p.
func (p *FuncPtr) CopyFrom(q *FuncPtr) {
	if q.argn != p.argn || q.retn != p.retn {
		panic(trig.Contractf(p.String(), "prototype", "cannot copy from %v", q))
	}
	p.rec.CopyFrom(p.s.as, q.rec)
	p.state, p.target = q.state, q.target
}

// Targets returns the conditions that hold when the pointer refers to f.
func (p *FuncPtr) Targets(f *Func) []trig.Cond {
	want, wantCont := p.resolve(f)
	entry, cont := p.Cells()
	return []trig.Cond{
		trig.Exactly(entry.Ref(), want),
		trig.Exactly(cont.Ref(), wantCont),
	}
}

// Invoke emits a call through the pointer, returning fresh variables holding
// copies of the return values.
//
// Arguments go into the shared argument storage. The call itself is one
// instruction whose next-pointer and action destination are patched from
// the pointer's cells just before it runs, so that it rewrites the indirect
// caller's continuation to return here, and jumps to the caller's entry.
func (p *FuncPtr) Invoke(args ...trig.Source) []*trig.Var {
	if p.state != Bound {
		panic(trig.Contractf(p.String(), "bound before invoke", "pointer is %v", p.state))
	}
	if len(args) != p.argn {
		panic(trig.Contractf(p.String(), "argument count",
			"%v arguments given, expected %v", len(args), p.argn))
	}
	s, as := p.s, p.s.as
	if p.argn > 0 {
		as.SetVariables(trig.Refs(s.ArgStorage(p.argn).Vars...), args)
	}

	ret := as.NewForward(p.name + ".ret")
	jump := &trig.Instr{
		Name:    p.name + ".call",
		Actions: []trig.Action{trig.Set(trig.Imm(0), trig.Addr(ret, 0))},
		Next:    trig.Imm(0),
	}
	entry, cont := p.Cells()
	as.SetVariables(
		[]trig.Operand{jump.NextCell(), jump.ActionDest(0)},
		trig.Vars(entry, cont))
	as.Emit(jump)
	as.Place(ret)

	if p.retn == 0 {
		return nil
	}
	return s.copyOut(p.name, s.RetStorage(p.retn).Vars)
}
