package fptr_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gotrig/internal/fptr"
	"github.com/jcorbin/gotrig/internal/trig"
)

func TestSession_storageFor(t *testing.T) {
	h := newHarness(t)
	for _, n := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("arity %v", n), func(t *testing.T) {
			args := h.s.StorageFor(fptr.ArgPool, n)
			rets := h.s.StorageFor(fptr.RetPool, n)
			assert.Same(t, args, h.s.ArgStorage(n), "expected the same argument storage")
			assert.Same(t, rets, h.s.RetStorage(n), "expected the same return storage")
			assert.NotSame(t, args, rets, "expected distinct pools")
			assert.Equal(t, n, args.Arity())
			assert.Equal(t, n, rets.Arity())
			assert.Equal(t, fptr.ArgPool, args.Kind)
			assert.Equal(t, fptr.RetPool, rets.Kind)
		})
	}

	ce := h.compileErr(func() { h.s.ArgStorage(-1) })
	assert.Equal(t, "non-negative arity", ce.Invariant)
}

func TestSession_storageSharedByArity(t *testing.T) {
	h := newHarness(t)
	double := h.s.Define("double", 1, 1, doubleBody)
	negate := h.s.Define("negate", 1, 1, negateBody)
	add := h.s.Define("add", 2, 1, addBody)

	h.compile(func() {
		h.s.NewFuncPtrTo("p", 1, 1, double)
		h.s.NewFuncPtrTo("q", 1, 1, negate)
		h.s.NewFuncPtrTo("r", 2, 1, add)
	})

	img, err := h.s.Link()
	require.NoError(t, err)
	var pools []string
	for _, name := range img.Labels {
		if len(name) > 4 && (name[:4] == "args" || name[:4] == "rets") {
			pools = append(pools, name)
		}
	}
	assert.ElementsMatch(t, []string{
		"args1[0]", "rets1[0]",
		"args2[0]", "args2[1]",
	}, pools)
}

func TestSession_indirectCallerOnce(t *testing.T) {
	h := newHarness(t)
	double := h.s.Define("double", 1, 1, doubleBody)

	var r1, r2 []*trig.Var
	h.compile(func() {
		p := h.s.NewFuncPtrTo("p", 1, 1, double)
		q := h.s.NewFuncPtr("q", 1, 1)
		q.Bind(double)
		q.Bind(double)
		r1 = p.Invoke(trig.Imm(2))
		r2 = q.Invoke(trig.Imm(3))
	})
	assert.Equal(t, 1, h.s.CallerBuilds(), "expected one caller build")

	start1, end1 := h.s.IndirectCaller(double)
	start2, end2 := h.s.IndirectCaller(double)
	assert.Same(t, start1, start2)
	assert.Same(t, end1, end2)
	assert.Equal(t, 1, h.s.CallerBuilds(), "expected no rebuild")

	eng := h.run()
	expectValues(t, eng, r1, 4)
	expectValues(t, eng, r2, 6)
}

func TestSession_indirectCallerNeedsBody(t *testing.T) {
	h := newHarness(t)
	double := h.s.Define("double", 1, 1, doubleBody)
	ce := h.compileErr(func() { h.s.IndirectCaller(double) })
	assert.Equal(t, "compiled body", ce.Invariant)
	assert.Equal(t, 0, h.s.CallerBuilds())

	other := newHarness(t)
	foreign := other.s.Define("foreign", 1, 1, doubleBody)
	ce = h.compileErr(func() { h.s.NewFuncPtr("p", 1, 1).Bind(foreign) })
	assert.Equal(t, "same session", ce.Invariant)
}

func TestSession_indirectCallerForeignFunc(t *testing.T) {
	h := newHarness(t)
	mine := h.s.Define("mine", 1, 1, doubleBody)
	h.compile(func() { h.s.NewFuncPtr("p", 1, 1).Bind(mine) })
	require.Equal(t, 1, h.s.CallerBuilds())

	other := newHarness(t)
	foreign := other.s.Define("foreign", 1, 1, negateBody)
	other.compile(foreign.Compile)
	require.Equal(t, mine.ID(), foreign.ID(), "expected ids to collide across sessions")

	ce := h.compileErr(func() { h.s.IndirectCaller(foreign) })
	assert.Equal(t, "same session", ce.Invariant)
	assert.Equal(t, 1, h.s.CallerBuilds())
}

func TestFunc_compileFailure(t *testing.T) {
	h := newHarness(t)
	bad := h.s.Define("bad", 1, 2, doubleBody)
	double := h.s.Define("double", 1, 1, doubleBody)
	p := h.s.NewFuncPtr("p", 1, 2)

	for i := 0; i < 2; i++ {
		ce := h.compileErr(func() { p.Bind(bad) })
		assert.Equal(t, "return count", ce.Invariant, "expected bind #%v to fail", i+1)
		assert.False(t, bad.Compiled(), "expected the failed body to be discarded")
		assert.Nil(t, bad.Params())
		assert.Equal(t, fptr.Uninitialized, p.State())
		assert.Equal(t, 0, h.s.CallerBuilds(), "expected no caller for the failed body")
	}

	var r []*trig.Var
	h.compile(func() {
		r = h.s.NewFuncPtrTo("q", 1, 1, double).Invoke(trig.Imm(4))
	})
	eng := h.run()
	expectValues(t, eng, r, 8)
}

func TestFunc_call(t *testing.T) {
	h := newHarness(t)
	add := h.s.Define("add", 2, 1, addBody)
	assert.False(t, add.Compiled())
	assert.Nil(t, add.Params())

	var r1, r2, r3 []*trig.Var
	h.compile(func() {
		r1 = add.Call(trig.Imm(2), trig.Imm(3))
		p := h.s.NewFuncPtrTo("p", 2, 1, add)
		r2 = p.Invoke(trig.Imm(20), trig.Imm(1))
		r3 = add.Call(trig.Vars(r1[0], r2[0])...)
	})
	assert.True(t, add.Compiled())
	assert.Len(t, add.Params(), 2)
	assert.Len(t, add.Results(), 1)

	eng := h.run()
	expectValues(t, eng, r1, 5)
	expectValues(t, eng, r2, 21)
	expectValues(t, eng, r3, 26)
}

func TestFunc_define(t *testing.T) {
	h := newHarness(t)
	f := h.s.Define("f", 1, 2, doubleBody)
	g := h.s.Define("g", 1, 2, doubleBody)
	assert.Less(t, f.ID(), g.ID(), "expected increasing ids")
	argn, retn := f.Proto()
	assert.Equal(t, 1, argn)
	assert.Equal(t, 2, retn)

	ce := h.compileErr(func() { f.Call(trig.Imm(1)) })
	assert.Equal(t, "return count", ce.Invariant)

	ce = h.compileErr(func() { h.s.Define("h", -1, 0, doubleBody) })
	assert.Equal(t, "non-negative arity", ce.Invariant)
	ce = h.compileErr(func() { h.s.Define("h", 0, 0, nil) })
	assert.Equal(t, "function body", ce.Invariant)
}

func TestCallBody(t *testing.T) {
	as := trig.NewAssembler()
	x := as.NewVar("x", 1)

	var start *trig.Forward
	end := &trig.Instr{Name: "sub.end"}
	require.NoError(t, trig.Guard(t.Name(), func() {
		as.Scope("sub", func() {
			start = as.Next()
			as.Do(x.Add(10))
			as.Emit(end)
		})
		fptr.CallBody(as, start, end)
		as.Do(x.Add(100))
		fptr.CallBody(as, start, end)
	}))

	h := harness{t, as, fptr.NewSession(as)}
	eng := h.run()
	expectValues(t, eng, []*trig.Var{x}, 121)
}
