package main

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/fptr"
	"github.com/jcorbin/gotrig/internal/mem"
	"github.com/jcorbin/gotrig/internal/trig"
)

// demo is a program built in its own session, along with the values it
// should leave behind.
type demo struct {
	name  string
	about string
	build func(s *fptr.Session) []check
}

type check struct {
	label string
	vars  []*trig.Var
	want  []mem.Word
}

func expect(label string, vars []*trig.Var, want ...mem.Word) check {
	return check{label, vars, want}
}

var demos = []*demo{
	{"roundtrip", "call add through a pointer, twice", roundTrip},
	{"rebind", "rebind a pointer between double and negate", rebind},
	{"direct", "call bodies directly, without pointers", direct},
	{"nested", "call through a pointer from a body called through a pointer", nested},
	{"dispatch", "choose a pointer target at run time, then test it", dispatch},
}

func findDemo(name string) (*demo, error) {
	for _, d := range demos {
		if d.name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no demo named %q", name)
}

func addBody(s *fptr.Session, args []*trig.Var) []trig.Source {
	as := s.Assembler()
	sum := as.NewVar("sum", 0)
	as.Do(sum.Assign(args[0]), sum.AddVar(args[1]))
	return trig.Vars(sum)
}

func doubleBody(s *fptr.Session, args []*trig.Var) []trig.Source {
	s.Assembler().Do(args[0].AddVar(args[0]))
	return trig.Vars(args[0])
}

func negateBody(s *fptr.Session, args []*trig.Var) []trig.Source {
	as := s.Assembler()
	neg := as.NewVar("neg", 0)
	as.Do(neg.SetTo(0), neg.SubtractVar(args[0]))
	return trig.Vars(neg)
}

func roundTrip(s *fptr.Session) []check {
	add := s.Define("add", 2, 1, addBody)
	p := s.NewFuncPtr("p", 2, 1)
	p.Bind(add)
	return []check{
		expect("add(3, 4)", p.Invoke(trig.Imm(3), trig.Imm(4)), 7),
		expect("add(10, -2)", p.Invoke(trig.Imm(10), trig.Imm(-2)), 8),
	}
}

func rebind(s *fptr.Session) []check {
	double := s.Define("double", 1, 1, doubleBody)
	negate := s.Define("negate", 1, 1, negateBody)
	p := s.NewFuncPtr("p", 1, 1)
	p.Bind(double)
	r1 := p.Invoke(trig.Imm(5))
	p.Bind(negate)
	r2 := p.Invoke(trig.Imm(5))
	return []check{
		expect("double(5)", r1, 10),
		expect("negate(5)", r2, -5),
	}
}

func direct(s *fptr.Session) []check {
	as := s.Assembler()
	count := as.NewVar("count", 0)
	add := s.Define("add", 2, 1, addBody)
	tick := s.Define("tick", 0, 0, func(s *fptr.Session, args []*trig.Var) []trig.Source {
		as.Do(count.Add(1))
		return nil
	})
	r := add.Call(trig.Imm(2), trig.Imm(3))
	tick.Call()
	tick.Call()
	return []check{
		expect("add(2, 3)", r, 5),
		expect("ticks", []*trig.Var{count}, 2),
	}
}

func nested(s *fptr.Session) []check {
	double := s.Define("double", 1, 1, doubleBody)
	inner := s.NewFuncPtrTo("inner", 1, 1, double)
	var innerResult []*trig.Var
	outer := s.Define("outer", 1, 2, func(s *fptr.Session, args []*trig.Var) []trig.Source {
		as := s.Assembler()
		// the argument storage is reused by the inner call; keep our own copy
		saved := as.NewVar("saved", 0)
		as.Do(saved.Assign(s.ArgStorage(1).Vars[0]))
		innerResult = inner.Invoke(trig.Imm(7))
		return trig.Vars(saved, innerResult[0])
	})
	p := s.NewFuncPtrTo("p", 1, 2, outer)
	r := p.Invoke(trig.Imm(5))
	return []check{
		expect("outer(5)", r, 5, 14),
		expect("inner(7)", innerResult, 14),
	}
}

func dispatch(s *fptr.Session) []check {
	as := s.Assembler()
	double := s.Define("double", 1, 1, doubleBody)
	negate := s.Define("negate", 1, 1, negateBody)
	sel := as.NewVar("sel", 1)
	isNegate := as.NewVar("isNegate", 0)

	p := s.NewFuncPtr("p", 1, 1)
	as.If([]trig.Cond{sel.Exactly(0)}, func() { p.Bind(double) })
	as.If([]trig.Cond{sel.Exactly(1)}, func() { p.Bind(negate) })
	as.If(p.Targets(negate), func() { as.Do(isNegate.SetTo(1)) })

	q := s.NewFuncPtr("q", 1, 1)
	q.CopyFrom(p)
	return []check{
		expect("p(6)", p.Invoke(trig.Imm(6)), -6),
		expect("q(7)", q.Invoke(trig.Imm(7)), -7),
		expect("p is negate", []*trig.Var{isNegate}, 1),
	}
}
