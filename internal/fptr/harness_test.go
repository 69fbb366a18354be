package fptr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gotrig/internal/engine"
	"github.com/jcorbin/gotrig/internal/fptr"
	"github.com/jcorbin/gotrig/internal/logio"
	"github.com/jcorbin/gotrig/internal/mem"
	"github.com/jcorbin/gotrig/internal/trig"
)

type harness struct {
	*testing.T
	as *trig.Assembler
	s  *fptr.Session
}

func newHarness(t *testing.T) harness {
	as := trig.NewAssembler()
	return harness{t, as, fptr.NewSession(as, fptr.WithLogf(t.Logf))}
}

func (h harness) compile(build func()) {
	require.NoError(h, h.s.Compile(h.Name(), build), "unexpected compile error")
}

func (h harness) compileErr(build func()) *fptr.ContractError {
	var ce *fptr.ContractError
	err := h.s.Compile(h.Name(), build)
	require.ErrorAs(h, err, &ce, "expected a contract error")
	return ce
}

func (h harness) run() *engine.Engine {
	img, err := h.s.Link()
	require.NoError(h, err, "unexpected link error")

	eng := engine.New(engine.WithStepLimit(10000))
	require.NoError(h, eng.Load(img), "unexpected load error")
	if err := eng.Run(context.Background()); err != nil {
		lw := &logio.Writer{Logf: h.Logf, Prefix: "image: "}
		img.Dump(lw)
		lw.Close()
		require.NoError(h, err, "unexpected run error")
	}
	return eng
}

func expectValues(t *testing.T, eng *engine.Engine, vars []*trig.Var, want ...mem.Word) {
	have, err := eng.Values(vars...)
	require.NoError(t, err, "unexpected value error")
	assert.Equal(t, want, have, "expected values of %v", vars)
}

func addr(t *testing.T, a trig.Addressable) mem.Word {
	n, ok := trig.Address(a)
	require.True(t, ok, "expected %v to have an address", a)
	return mem.Word(n)
}

func addBody(s *fptr.Session, args []*trig.Var) []trig.Source {
	sum := s.Assembler().NewVar("sum", 0)
	s.Assembler().Do(sum.Assign(args[0]), sum.AddVar(args[1]))
	return trig.Vars(sum)
}

func doubleBody(s *fptr.Session, args []*trig.Var) []trig.Source {
	s.Assembler().Do(args[0].AddVar(args[0]))
	return trig.Vars(args[0])
}

func negateBody(s *fptr.Session, args []*trig.Var) []trig.Source {
	neg := s.Assembler().NewVar("neg", 0)
	s.Assembler().Do(neg.SetTo(0), neg.SubtractVar(args[0]))
	return trig.Vars(neg)
}
