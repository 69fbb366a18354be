package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gotrig/internal/engine"
	"github.com/jcorbin/gotrig/internal/mem"
	"github.com/jcorbin/gotrig/internal/trig"
)

func build(t *testing.T, f func(as *trig.Assembler)) *trig.Image {
	as := trig.NewAssembler(trig.WithLogf(t.Logf))
	require.NoError(t, trig.Guard(t.Name(), func() { f(as) }), "unexpected build error")
	img, err := as.Link()
	require.NoError(t, err, "unexpected link error")
	return img
}

func load(t *testing.T, img *trig.Image, opts ...engine.Option) *engine.Engine {
	e := engine.New(append([]engine.Option{engine.WithLogf(t.Logf)}, opts...)...)
	require.NoError(t, e.Load(img), "unexpected load error")
	return e
}

func TestEngine_programs(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func(as *trig.Assembler) []*trig.Var
		want  []mem.Word
	}{
		{"arithmetic", func(as *trig.Assembler) []*trig.Var {
			x, y := as.NewVar("x", 5), as.NewVar("y", 2)
			as.Do(x.AddVar(y), y.SetTo(10), x.Subtract(1))
			as.Do(y.SubtractVar(x))
			return []*trig.Var{x, y}
		}, []mem.Word{6, 4}},

		{"copy", func(as *trig.Assembler) []*trig.Var {
			x, y := as.NewVar("x", 0), as.NewVar("y", 42)
			as.Do(x.Assign(y))
			return []*trig.Var{x, y}
		}, []mem.Word{42, 42}},

		{"conditions", func(as *trig.Assembler) []*trig.Var {
			x := as.NewVar("x", 1)
			as.Emit(&trig.Instr{
				Conds:   []trig.Cond{x.Exactly(2)},
				Actions: []trig.Action{x.SetTo(9)},
			})
			as.Emit(&trig.Instr{
				Conds:   []trig.Cond{x.AtLeast(1), x.AtMost(1)},
				Actions: []trig.Action{x.Add(1)},
			})
			return []*trig.Var{x}
		}, []mem.Word{2}},

		{"if", func(as *trig.Assembler) []*trig.Var {
			x, yes, no := as.NewVar("x", 3), as.NewVar("yes", 0), as.NewVar("no", 0)
			as.If([]trig.Cond{x.AtLeast(3)}, func() { as.Do(yes.SetTo(1)) })
			as.If([]trig.Cond{x.AtMost(2)}, func() { as.Do(no.SetTo(1)) })
			return []*trig.Var{yes, no}
		}, []mem.Word{1, 0}},

		{"loop", func(as *trig.Assembler) []*trig.Var {
			i, sum := as.NewVar("i", 0), as.NewVar("sum", 0)
			top := as.Next()
			as.Do(i.Add(1), sum.AddVar(i))
			as.JumpIf([]trig.Cond{i.AtMost(4)}, trig.Addr(top, 0))
			return []*trig.Var{i, sum}
		}, []mem.Word{5, 15}},

		{"rewritten next-pointer", func(as *trig.Assembler) []*trig.Var {
			x, y := as.NewVar("x", 0), as.NewVar("y", 0)
			skip := as.NewForward("skip")
			jump := &trig.Instr{Name: "jump"}
			as.Do(trig.SetNext(jump, trig.Addr(skip, 0)))
			as.Emit(jump)
			as.Do(x.SetTo(1))
			as.Place(skip)
			as.Do(y.SetTo(1))
			return []*trig.Var{x, y}
		}, []mem.Word{0, 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var vars []*trig.Var
			img := build(t, func(as *trig.Assembler) { vars = tc.build(as) })
			e := load(t, img)
			require.NoError(t, e.Run(context.Background()), "unexpected run error")
			have, err := e.Values(vars...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, have)
		})
	}
}

func TestEngine_faults(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func(as *trig.Assembler)
		want  engine.FaultError
	}{
		{"jump into data", func(as *trig.Assembler) {
			as.Jump(trig.Imm(3))
		}, engine.FaultError{Addr: 3, Reason: "jump into non-instruction"}},

		{"null write", func(as *trig.Assembler) {
			as.Do(trig.Set(trig.Imm(0), trig.Imm(1)))
		}, engine.FaultError{Addr: 16, Reason: "access to null cell @0"}},

		{"negative next", func(as *trig.Assembler) {
			as.Jump(trig.Imm(-1))
		}, engine.FaultError{Addr: 16, Reason: "negative next-pointer -1"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := load(t, build(t, tc.build))
			err := e.Run(context.Background())
			var fe engine.FaultError
			require.True(t, errors.As(err, &fe), "expected a fault, got %v", err)
			assert.Equal(t, tc.want, fe)
		})
	}
}

func TestEngine_limits(t *testing.T) {
	forever := build(t, func(as *trig.Assembler) {
		top := as.Next()
		as.Jump(trig.Addr(top, 0))
	})

	t.Run("steps", func(t *testing.T) {
		e := load(t, forever, engine.WithStepLimit(100))
		err := e.Run(context.Background())
		assert.True(t, errors.Is(err, engine.ErrStepLimit), "expected step limit, got %v", err)
		assert.Equal(t, uint(100), e.Steps())
	})

	t.Run("context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := load(t, forever, engine.WithStepLimit(0))
		err := e.Run(ctx)
		assert.True(t, errors.Is(err, context.Canceled), "expected cancelation, got %v", err)
		assert.Equal(t, uint(0), e.Steps())
	})

	t.Run("memory", func(t *testing.T) {
		e := engine.New(engine.WithMemLimit(trig.Base + 1))
		err := e.Load(forever)
		var le mem.LimitError
		assert.True(t, errors.As(err, &le), "expected a memory limit error, got %v", err)
	})

	t.Run("no image", func(t *testing.T) {
		assert.EqualError(t, engine.New().Run(context.Background()), "no image loaded")
	})
}

func TestEngine_snapshot(t *testing.T) {
	var x *trig.Var
	img := build(t, func(as *trig.Assembler) {
		x = as.NewVar("x", 1)
		as.Do(x.Add(41))
	})
	e := load(t, img)
	require.NoError(t, e.Run(context.Background()))

	snap, err := e.Snapshot()
	require.NoError(t, err)
	addr, _ := trig.Address(x)
	assert.Equal(t, mem.Word(42), snap.Load(addr))
	assert.Equal(t, mem.Word(1), img.Load(addr), "expected the linked image unchanged")
}
