package fptr

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/trig"
)

// Body emits the instructions of a function given its argument variables,
// returning one source per return value.
type Body func(s *Session, args []*trig.Var) []trig.Source

// Func is a function body with a fixed prototype, compiled at most once into
// its own scope.
type Func struct {
	s    *Session
	id   uint64
	name string
	argn int
	retn int
	body Body

	fstart *trig.Forward
	fend   *trig.Instr
	args   []*trig.Var
	rets   []*trig.Var
}

// Define declares a function taking argn arguments and returning retn values.
// Its body is not compiled until first needed.
func (s *Session) Define(name string, argn, retn int, body Body) *Func {
	if argn < 0 || retn < 0 {
		panic(trig.Contractf(name, "non-negative arity", "prototype (%v, %v)", argn, retn))
	}
	if body == nil {
		panic(trig.Contractf(name, "function body", "no body given"))
	}
	s.lastID++
	f := &Func{
		s:    s,
		id:   s.lastID,
		name: name,
		argn: argn,
		retn: retn,
		body: body,
	}
	s.logf("define %v", f)
	return f
}

// ID returns the function's session-unique id.
func (f *Func) ID() uint64 { return f.id }

// Name returns the function's name.
func (f *Func) Name() string { return f.name }

// Proto returns the number of arguments and return values.
func (f *Func) Proto() (argn, retn int) { return f.argn, f.retn }

// Compiled reports whether the body has been compiled.
func (f *Func) Compiled() bool { return f.fstart != nil }

// Params returns the function's own argument variables, or nil before the
// body is compiled.
func (f *Func) Params() []*trig.Var { return f.args }

// Results returns the function's own return variables, or nil before the
// body is compiled.
func (f *Func) Results() []*trig.Var { return f.rets }

func (f *Func) String() string {
	return fmt.Sprintf("%v#%v(%v)%v", f.name, f.id, f.argn, f.retn)
}

// Compile emits the body into its own scope, unless already done. The body
// starts at the first instruction of that scope and ends with an exit
// instruction whose next-pointer each caller rewrites before entering.
//
// A body that refers to its own function, such as by binding a pointer to
// it, sees it as already compiled.
//
// If the body panics, its scope is dropped and f is left uncompiled, so
// that any later use compiles it again, and fails the same way.
func (f *Func) Compile() {
	if f.fstart != nil {
		return
	}
	as := f.s.as
	f.args = as.NewVars(f.name+".arg", f.argn)
	f.rets = as.NewVars(f.name+".ret", f.retn)
	f.fend = &trig.Instr{Name: f.name + ".end"}

	as.PushScope(f.name)
	f.fstart = as.Next()
	done := false
	defer func() {
		if !done {
			as.DropScope()
			f.fstart, f.fend, f.args, f.rets = nil, nil, nil, nil
			delete(f.s.callers, f.id)
			f.s.logf("compiling %v failed", f)
		}
	}()

	rets := f.body(f.s, f.args)
	if len(rets) != f.retn {
		panic(trig.Contractf(f.String(), "return count",
			"body returned %v values, expected %v", len(rets), f.retn))
	}
	as.SetVariables(trig.Refs(f.rets...), rets)
	as.Emit(f.fend)
	as.PopScope()
	done = true
	f.s.logf("compiled %v", f)
}

func (f *Func) checkArgs(subject string, args []trig.Source) {
	if len(args) != f.argn {
		panic(trig.Contractf(subject, "argument count",
			"%v arguments given, %v expects %v", len(args), f, f.argn))
	}
}

// Call emits a direct call to f, returning fresh variables holding copies of
// its return values.
func (f *Func) Call(args ...trig.Source) []*trig.Var {
	f.checkArgs(f.name, args)
	f.Compile()
	as := f.s.as
	as.SetVariables(trig.Refs(f.args...), args)
	CallBody(as, f.fstart, f.fend)
	return f.s.copyOut(f.name, f.rets)
}
