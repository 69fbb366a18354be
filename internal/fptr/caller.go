package fptr

import (
	"github.com/jcorbin/gotrig/internal/trig"
)

type caller struct {
	start *trig.Forward
	end   *trig.Instr
}

// CallBody emits a call into the code running from fstart to fend: one
// instruction rewrites the next-pointer of fend to the instruction after the
// call, and continues at fstart.
func CallBody(as *trig.Assembler, fstart, fend trig.Addressable) {
	ret := as.NewForward(fend.String() + ".ret")
	as.Emit(&trig.Instr{
		Actions: []trig.Action{trig.SetNext(fend, trig.Addr(ret, 0))},
		Next:    trig.Addr(fstart, 0),
	})
	as.Place(ret)
}

// adaptIn copies the shared argument storage into f's parameters.
func (s *Session) adaptIn(f *Func) {
	if f.argn == 0 {
		return
	}
	st := s.ArgStorage(f.argn)
	s.as.SetVariables(trig.Refs(f.args...), trig.Vars(st.Vars...))
}

// adaptOut copies f's results into the shared return storage.
func (s *Session) adaptOut(f *Func) {
	if f.retn == 0 {
		return
	}
	st := s.RetStorage(f.retn)
	s.as.SetVariables(trig.Refs(st.Vars...), trig.Vars(f.rets...))
}

// IndirectCaller returns the entry of f's indirect caller, and its final
// instruction, whose next-pointer is rewritten by every invocation to return
// to its call site. The caller is built on first request, in its own scope;
// f must already be compiled.
func (s *Session) IndirectCaller(f *Func) (start, end trig.Addressable) {
	c := s.indirectCaller(f)
	return c.start, c.end
}

func (s *Session) indirectCaller(f *Func) caller {
	if f.s != s {
		panic(trig.Contractf(f.String(), "same session", "function defined in another session"))
	}
	if c, ok := s.callers[f.id]; ok {
		return c
	}
	if !f.Compiled() {
		panic(trig.Contractf(f.String(), "compiled body", "cannot build a caller before the body"))
	}

	var c caller
	name := "caller:" + f.name
	s.as.Scope(name, func() {
		c.start = s.as.Next()
		s.adaptIn(f)
		CallBody(s.as, f.fstart, f.fend)
		s.adaptOut(f)
		c.end = s.as.Emit(&trig.Instr{Name: name + ".end"})
	})
	s.callers[f.id] = c
	s.builds++
	s.logf("built %v for %v", name, f)
	return c
}
